package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

type AppointmentStore struct {
	coll *mongo.Collection
}

func NewAppointmentStore(db *mongo.Database) *AppointmentStore {
	return &AppointmentStore{coll: db.Collection(collectionAppointments)}
}

type mongoAppointment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PatientID string             `bson:"patient_id"`
	DoctorID  string             `bson:"doctor_id"`
	StartsAt  time.Time          `bson:"starts_at"`
	EndsAt    time.Time          `bson:"ends_at"`
	Reason    string             `bson:"reason,omitempty"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (m mongoAppointment) toDomain() domain.Appointment {
	return domain.Appointment{
		ID:        m.ID.Hex(),
		PatientID: m.PatientID,
		DoctorID:  m.DoctorID,
		StartsAt:  m.StartsAt.UTC(),
		EndsAt:    m.EndsAt.UTC(),
		Reason:    m.Reason,
		Status:    domain.AppointmentStatus(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func (r *AppointmentStore) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAppointment{
		ID:        primitive.NewObjectID(),
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		StartsAt:  a.StartsAt.UTC(),
		EndsAt:    a.EndsAt.UTC(),
		Reason:    a.Reason,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	created := doc.toDomain()
	return &created, nil
}

func (r *AppointmentStore) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	oid, err := objectID(id, domain.ErrAppointmentNotFound)
	if err != nil {
		return nil, err
	}
	var doc mongoAppointment
	if err := findOne(ctx, r.coll, bson.M{"_id": oid}, &doc, domain.ErrAppointmentNotFound); err != nil {
		return nil, err
	}
	found := doc.toDomain()
	return &found, nil
}

// UpdateStatus matches on the current status so concurrent changes cannot
// both apply.
func (r *AppointmentStore) UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) error {
	oid, err := objectID(id, domain.ErrAppointmentNotFound)
	if err != nil {
		return err
	}

	uctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(uctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to)}},
	)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w (appointment %s is no longer %s)", domain.ErrInvalidTransition, id, from)
	}
	return nil
}

func (r *AppointmentStore) ListByDoctor(ctx context.Context, doctorID string) ([]domain.Appointment, error) {
	return r.list(ctx, bson.M{"doctor_id": doctorID})
}

func (r *AppointmentStore) ListByPatient(ctx context.Context, patientID string) ([]domain.Appointment, error) {
	return r.list(ctx, bson.M{"patient_id": patientID})
}

func (r *AppointmentStore) list(ctx context.Context, filter bson.M) ([]domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoAppointment
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	out := make([]domain.Appointment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
