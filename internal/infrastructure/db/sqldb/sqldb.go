// Package sqldb implements the stores on SQLite, PostgreSQL or MySQL via bun.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	// Drivers for the remaining dialects.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

const (
	defaultMaxOpenConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	pingTimeout            = 5 * time.Second

	// ER_DUP_KEYNAME
	mysqlDuplicateKeyName = 1061
)

// Config selects the dialect and data source.
type Config struct {
	Dialect string
	DSN     string
}

// Open connects to the database and returns a bun handle for the dialect.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	driverName := cfg.Dialect
	// pgx's stdlib adapter registers itself as "pgx".
	if cfg.Dialect == DialectPostgres {
		driverName = "pgx"
	}

	var wrap func(*sql.DB) *bun.DB
	switch cfg.Dialect {
	case DialectSQLite:
		wrap = func(db *sql.DB) *bun.DB { return bun.NewDB(db, sqlitedialect.New()) }
	case DialectPostgres:
		wrap = func(db *sql.DB) *bun.DB { return bun.NewDB(db, pgdialect.New()) }
	case DialectMySQL:
		wrap = func(db *sql.DB) *bun.DB { return bun.NewDB(db, mysqldialect.New()) }
	default:
		return nil, fmt.Errorf("sqldb: unsupported dialect %q", cfg.Dialect)
	}

	sqlDB, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqldb open: %w", err)
	}

	maxOpen := defaultMaxOpenConns
	// Every connection to ":memory:" gets its own empty database.
	if cfg.Dialect == DialectSQLite && cfg.DSN == ":memory:" {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqldb ping: %w", err)
	}

	return wrap(sqlDB), nil
}

type principalRow struct {
	bun.BaseModel `bun:"table:principals"`

	ID           string             `bun:"id,pk"`
	Username     string             `bun:"username,notnull,unique"`
	PasswordHash string             `bun:"password_hash,notnull"`
	CreatedAt    time.Time          `bun:"created_at,notnull"`
	Roles        []principalRoleRow `bun:"rel:has-many,join:id=principal_id"`
}

type principalRoleRow struct {
	bun.BaseModel `bun:"table:principal_roles"`

	PrincipalID string `bun:"principal_id,pk"`
	Role        string `bun:"role,pk"`
}

type patientRow struct {
	bun.BaseModel `bun:"table:patients"`

	ID         string    `bun:"id,pk"`
	Username   string    `bun:"username,nullzero,unique"`
	FullName   string    `bun:"full_name,notnull"`
	Email      string    `bun:"email"`
	Phone      string    `bun:"phone"`
	Gender     string    `bun:"gender"`
	BloodGroup string    `bun:"blood_group"`
	BirthDate  time.Time `bun:"birth_date"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

type doctorRow struct {
	bun.BaseModel `bun:"table:doctors"`

	ID             string `bun:"id,pk"`
	Username       string `bun:"username,nullzero,unique"`
	FullName       string `bun:"full_name,notnull"`
	Specialization string `bun:"specialization"`
	Department     string `bun:"department"`
	Email          string `bun:"email"`
}

type appointmentRow struct {
	bun.BaseModel `bun:"table:appointments"`

	ID        string    `bun:"id,pk"`
	PatientID string    `bun:"patient_id,notnull"`
	DoctorID  string    `bun:"doctor_id,notnull"`
	StartsAt  time.Time `bun:"starts_at,notnull"`
	EndsAt    time.Time `bun:"ends_at,notnull"`
	Reason    string    `bun:"reason"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Migrate creates any missing table and index. Existing tables are left as
// they are.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*principalRow)(nil),
		(*principalRoleRow)(nil),
		(*patientRow)(nil),
		(*doctorRow)(nil),
		(*appointmentRow)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("sqldb migrate %T: %w", m, err)
		}
	}

	indexes := []struct {
		name    string
		model   interface{}
		columns []string
	}{
		{"idx_appointments_doctor", (*appointmentRow)(nil), []string{"doctor_id", "starts_at"}},
		{"idx_appointments_patient", (*appointmentRow)(nil), []string{"patient_id", "starts_at"}},
	}
	isMySQL := db.Dialect().Name() == dialect.MySQL
	for _, idx := range indexes {
		q := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...)
		// MySQL has no IF NOT EXISTS for indexes.
		if !isMySQL {
			q = q.IfNotExists()
		}
		if _, err := q.Exec(ctx); err != nil {
			if isMySQL && isDuplicateIndex(err) {
				continue
			}
			return fmt.Errorf("sqldb migrate index %s: %w", idx.name, err)
		}
	}
	return nil
}

func isDuplicateIndex(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateKeyName
}
