package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

type AppointmentStore struct {
	db *bun.DB
}

func NewAppointmentStore(db *bun.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

func (s *AppointmentStore) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	row := appointmentRow{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		StartsAt:  a.StartsAt.UTC(),
		EndsAt:    a.EndsAt.UTC(),
		Reason:    a.Reason,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	created := row.toDomain()
	return &created, nil
}

func (s *AppointmentStore) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	var row appointmentRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	found := row.toDomain()
	return &found, nil
}

// UpdateStatus only touches the row while it still holds from.
func (s *AppointmentStore) UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) error {
	res, err := s.db.NewUpdate().
		Model((*appointmentRow)(nil)).
		Set("status = ?", string(to)).
		Where("id = ?", id).
		Where("status = ?", string(from)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if n == 0 {
		if _, err := s.FindByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w (appointment %s is no longer %s)", domain.ErrInvalidTransition, id, from)
	}
	return nil
}

func (s *AppointmentStore) ListByDoctor(ctx context.Context, doctorID string) ([]domain.Appointment, error) {
	return s.list(ctx, "doctor_id = ?", doctorID)
}

func (s *AppointmentStore) ListByPatient(ctx context.Context, patientID string) ([]domain.Appointment, error) {
	return s.list(ctx, "patient_id = ?", patientID)
}

func (s *AppointmentStore) list(ctx context.Context, where string, arg interface{}) ([]domain.Appointment, error) {
	var rows []appointmentRow
	if err := s.db.NewSelect().Model(&rows).Where(where, arg).Order("starts_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	out := make([]domain.Appointment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (r appointmentRow) toDomain() domain.Appointment {
	return domain.Appointment{
		ID:        r.ID,
		PatientID: r.PatientID,
		DoctorID:  r.DoctorID,
		StartsAt:  r.StartsAt.UTC(),
		EndsAt:    r.EndsAt.UTC(),
		Reason:    r.Reason,
		Status:    domain.AppointmentStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
}
