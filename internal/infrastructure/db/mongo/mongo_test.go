package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

func newMockT(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func ns(coll string) string {
	return mtest.TestDb + "." + coll
}

func appointmentDoc(id primitive.ObjectID, status domain.AppointmentStatus) bson.D {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "patient_id", Value: "p-1"},
		{Key: "doctor_id", Value: "d-1"},
		{Key: "starts_at", Value: start},
		{Key: "ends_at", Value: start.Add(30 * time.Minute)},
		{Key: "status", Value: string(status)},
		{Key: "created_at", Value: start.Add(-24 * time.Hour)},
	}
}

func updateResult(matched int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func duplicateKey() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error",
	})
}

func TestAppointmentStore_UpdateStatus(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("applies when the current status matches", func(mt *mtest.T) {
		mt.AddMockResponses(updateResult(1))

		store := NewAppointmentStore(mt.DB)
		err := store.UpdateStatus(ctx, primitive.NewObjectID().Hex(), domain.AppointmentScheduled, domain.AppointmentCancelled)
		if err != nil {
			mt.Fatalf("UpdateStatus: %v", err)
		}
	})

	mt.Run("lost race reports an invalid transition", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			updateResult(0),
			mtest.CreateCursorResponse(0, ns(collectionAppointments), mtest.FirstBatch, appointmentDoc(id, domain.AppointmentCompleted)),
		)

		store := NewAppointmentStore(mt.DB)
		err := store.UpdateStatus(ctx, id.Hex(), domain.AppointmentScheduled, domain.AppointmentCancelled)
		if !errors.Is(err, domain.ErrInvalidTransition) {
			mt.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	mt.Run("missing document reports not found", func(mt *mtest.T) {
		mt.AddMockResponses(
			updateResult(0),
			mtest.CreateCursorResponse(0, ns(collectionAppointments), mtest.FirstBatch),
		)

		store := NewAppointmentStore(mt.DB)
		err := store.UpdateStatus(ctx, primitive.NewObjectID().Hex(), domain.AppointmentScheduled, domain.AppointmentCompleted)
		if !errors.Is(err, domain.ErrAppointmentNotFound) {
			mt.Fatalf("expected ErrAppointmentNotFound, got %v", err)
		}
	})

	mt.Run("malformed id never reaches the server", func(mt *mtest.T) {
		store := NewAppointmentStore(mt.DB)
		err := store.UpdateStatus(ctx, "not-an-object-id", domain.AppointmentScheduled, domain.AppointmentCompleted)
		if !errors.Is(err, domain.ErrAppointmentNotFound) {
			mt.Fatalf("expected ErrAppointmentNotFound, got %v", err)
		}
	})
}

func TestAppointmentStore_FindAndList(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("find decodes the document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collectionAppointments), mtest.FirstBatch, appointmentDoc(id, domain.AppointmentScheduled)))

		got, err := NewAppointmentStore(mt.DB).FindByID(ctx, id.Hex())
		if err != nil {
			mt.Fatalf("FindByID: %v", err)
		}
		if got.ID != id.Hex() || got.Status != domain.AppointmentScheduled || got.DoctorID != "d-1" {
			mt.Fatalf("unexpected appointment %+v", got)
		}
		if got.EndsAt.Sub(got.StartsAt) != 30*time.Minute {
			mt.Fatalf("unexpected slot %s - %s", got.StartsAt, got.EndsAt)
		}
	})

	mt.Run("no documents maps to not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collectionAppointments), mtest.FirstBatch))

		_, err := NewAppointmentStore(mt.DB).FindByID(ctx, primitive.NewObjectID().Hex())
		if !errors.Is(err, domain.ErrAppointmentNotFound) {
			mt.Fatalf("expected ErrAppointmentNotFound, got %v", err)
		}
	})

	mt.Run("list by doctor", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collectionAppointments), mtest.FirstBatch,
			appointmentDoc(primitive.NewObjectID(), domain.AppointmentScheduled),
			appointmentDoc(primitive.NewObjectID(), domain.AppointmentCancelled),
		))

		got, err := NewAppointmentStore(mt.DB).ListByDoctor(ctx, "d-1")
		if err != nil {
			mt.Fatalf("ListByDoctor: %v", err)
		}
		if len(got) != 2 || got[1].Status != domain.AppointmentCancelled {
			mt.Fatalf("unexpected appointments %+v", got)
		}
	})
}

func TestPrincipalStore(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := NewPrincipalStore(mt.DB).Create(ctx, &domain.Principal{
			Username:     "nina",
			PasswordHash: "hash",
			Roles:        domain.NewRoleSet(domain.RolePatient),
		})
		if err != nil {
			mt.Fatalf("Create: %v", err)
		}
		if got.ID == "" || !got.HasRole(domain.RolePatient) {
			mt.Fatalf("unexpected principal %+v", got)
		}
	})

	mt.Run("duplicate username", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKey())

		_, err := NewPrincipalStore(mt.DB).Create(ctx, &domain.Principal{Username: "nina", Roles: domain.NewRoleSet(domain.RolePatient)})
		if !errors.Is(err, domain.ErrPrincipalExists) {
			mt.Fatalf("expected ErrPrincipalExists, got %v", err)
		}
	})

	mt.Run("find by username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collectionPrincipals), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "username", Value: "dr.ruiz"},
			{Key: "password_hash", Value: "hash"},
			{Key: "roles", Value: bson.A{"DOCTOR", "ADMIN"}},
		}))

		got, err := NewPrincipalStore(mt.DB).FindByUsername(ctx, "dr.ruiz")
		if err != nil {
			mt.Fatalf("FindByUsername: %v", err)
		}
		if !got.HasRole(domain.RoleDoctor) || !got.HasRole(domain.RoleAdmin) {
			mt.Fatalf("unexpected roles %v", got.Roles)
		}
	})

	mt.Run("unknown username", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collectionPrincipals), mtest.FirstBatch))

		_, err := NewPrincipalStore(mt.DB).FindByUsername(ctx, "ghost")
		if !errors.Is(err, domain.ErrPrincipalNotFound) {
			mt.Fatalf("expected ErrPrincipalNotFound, got %v", err)
		}
	})
}

func TestPatientStore(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	countResult := func(n int64) bson.D {
		return mtest.CreateCursorResponse(0, ns(collectionPatients), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: 1},
			{Key: "n", Value: n},
		})
	}
	patientDoc := func(name string) bson.D {
		return bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "full_name", Value: name},
			{Key: "email", Value: "x@example.com"},
		}
	}

	mt.Run("list page", func(mt *mtest.T) {
		mt.AddMockResponses(
			countResult(3),
			mtest.CreateCursorResponse(0, ns(collectionPatients), mtest.FirstBatch, patientDoc("Ana"), patientDoc("Luis")),
		)

		got, total, err := NewPatientStore(mt.DB).List(ctx, 0, 2)
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if total != 3 || len(got) != 2 || got[0].FullName != "Ana" {
			mt.Fatalf("unexpected page total=%d items=%+v", total, got)
		}
	})

	mt.Run("page beyond int range only counts", func(mt *mtest.T) {
		// A second find would fail for lack of a queued response.
		mt.AddMockResponses(countResult(3))

		got, total, err := NewPatientStore(mt.DB).List(ctx, 4611686018427387904, 10)
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if total != 3 || len(got) != 0 {
			mt.Fatalf("unexpected page total=%d items=%+v", total, got)
		}
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collectionPatients), mtest.FirstBatch))

		_, err := NewPatientStore(mt.DB).FindByID(ctx, primitive.NewObjectID().Hex())
		if !errors.Is(err, domain.ErrPatientNotFound) {
			mt.Fatalf("expected ErrPatientNotFound, got %v", err)
		}
	})

	mt.Run("empty username never matches", func(mt *mtest.T) {
		_, err := NewPatientStore(mt.DB).FindByUsername(ctx, "")
		if !errors.Is(err, domain.ErrPatientNotFound) {
			mt.Fatalf("expected ErrPatientNotFound, got %v", err)
		}
	})

	mt.Run("duplicate linked username", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKey())

		_, err := NewPatientStore(mt.DB).Create(ctx, &domain.PatientRecord{Username: "nina", FullName: "Nina"})
		if !errors.Is(err, domain.ErrValidation) {
			mt.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestDoctorStore(t *testing.T) {
	mt := newMockT(t)
	ctx := context.Background()

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collectionDoctors), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "full_name", Value: "Dr. Ruiz"}, {Key: "specialization", Value: "Cardiology"}},
		))

		got, err := NewDoctorStore(mt.DB).List(ctx)
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if len(got) != 1 || got[0].Specialization != "Cardiology" {
			mt.Fatalf("unexpected doctors %+v", got)
		}
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		_, err := NewDoctorStore(mt.DB).FindByID(ctx, "zzz")
		if !errors.Is(err, domain.ErrDoctorNotFound) {
			mt.Fatalf("expected ErrDoctorNotFound, got %v", err)
		}
	})

	mt.Run("find by username not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(collectionDoctors), mtest.FirstBatch))

		_, err := NewDoctorStore(mt.DB).FindByUsername(ctx, "dr.nobody")
		if !errors.Is(err, domain.ErrDoctorNotFound) {
			mt.Fatalf("expected ErrDoctorNotFound, got %v", err)
		}
	})

	mt.Run("duplicate linked username", func(mt *mtest.T) {
		mt.AddMockResponses(duplicateKey())

		_, err := NewDoctorStore(mt.DB).Create(ctx, &domain.Doctor{Username: "dr.ruiz", FullName: "Dr. Ruiz"})
		if !errors.Is(err, domain.ErrValidation) {
			mt.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}
