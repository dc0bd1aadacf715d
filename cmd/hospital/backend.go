package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hospitalmgmt/hospital-api/internal/api/handler"
	"github.com/hospitalmgmt/hospital-api/internal/core/ports"
	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/config"
	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/db/memory"
	mongostore "github.com/hospitalmgmt/hospital-api/internal/infrastructure/db/mongo"
	redisstore "github.com/hospitalmgmt/hospital-api/internal/infrastructure/db/redis"
	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/db/sqldb"
	"github.com/hospitalmgmt/hospital-api/internal/infrastructure/messaging"
)

// backend is the set of stores selected by STORE_DRIVER plus the session
// state and notifier chosen by REDIS_ADDR and AMQP_URL.
type backend struct {
	principals   ports.PrincipalStore
	patients     ports.PatientStore
	doctors      ports.DoctorStore
	appointments ports.AppointmentStore

	revoked  ports.RevocationList
	limiter  ports.LoginLimiter
	notifier ports.AppointmentNotifier

	checks  map[string]handler.Check
	closers []func(context.Context) error
}

func (b *backend) onClose(fn func(context.Context) error) {
	b.closers = append(b.closers, fn)
}

// Close releases connections in reverse order of opening.
func (b *backend) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openStores connects the configured store driver.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	b := &backend{checks: make(map[string]handler.Check)}

	switch cfg.Store.Driver {
	case config.StoreMemory:
		b.principals = memory.NewPrincipalStore()
		b.patients = memory.NewPatientStore()
		b.doctors = memory.NewDoctorStore()
		b.appointments = memory.NewAppointmentStore()

	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		b.onClose(client.Disconnect)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
		b.principals = mongostore.NewPrincipalStore(db)
		b.patients = mongostore.NewPatientStore(db)
		b.doctors = mongostore.NewDoctorStore(db)
		b.appointments = mongostore.NewAppointmentStore(db)
		b.checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	case config.StoreSQL:
		db, err := sqldb.Open(ctx, sqldb.Config{Dialect: cfg.SQL.Dialect, DSN: cfg.SQL.DSN})
		if err != nil {
			return nil, err
		}
		b.onClose(func(context.Context) error { return db.Close() })
		if err := sqldb.Migrate(ctx, db); err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
		b.principals = sqldb.NewPrincipalStore(db)
		b.patients = sqldb.NewPatientStore(db)
		b.doctors = sqldb.NewDoctorStore(db)
		b.appointments = sqldb.NewAppointmentStore(db)
		b.checks["sql"] = db.PingContext

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	log.Info().Str("driver", cfg.Store.Driver).Msg("stores ready")
	return b, nil
}

// openSessionState keeps revocations and login counters in Redis when
// REDIS_ADDR is set, otherwise in process memory.
func (b *backend) openSessionState(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.Redis.Addr == "" {
		b.revoked = memory.NewRevocationList()
		b.limiter = memory.NewLoginLimiter(cfg.Login.MaxAttempts, cfg.Login.Window)
		log.Info().Msg("session state kept in memory")
		return nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	b.onClose(func(context.Context) error { return client.Close() })
	b.revoked = redisstore.NewRevocationList(client)
	b.limiter = redisstore.NewLoginLimiter(client, cfg.Login.MaxAttempts, cfg.Login.Window)
	b.checks["redis"] = redisstore.Ping(client)
	log.Info().Str("addr", cfg.Redis.Addr).Msg("session state kept in redis")
	return nil
}

// openNotifier publishes to RabbitMQ when AMQP_URL is set, otherwise logs.
func (b *backend) openNotifier(cfg *config.Config, log zerolog.Logger) error {
	if cfg.AMQP.URL == "" {
		b.notifier = messaging.NewLogNotifier(log)
		return nil
	}

	publisher, err := messaging.DialRabbitMQ(cfg.AMQP.URL, cfg.AMQP.Queue)
	if err != nil {
		return err
	}
	b.onClose(func(context.Context) error { return publisher.Close() })
	b.notifier = publisher
	b.checks["amqp"] = publisher.Ping
	log.Info().Str("queue", cfg.AMQP.Queue).Msg("appointment notifications published to rabbitmq")
	return nil
}
