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

type PatientStore struct {
	db *bun.DB
}

func NewPatientStore(db *bun.DB) *PatientStore {
	return &PatientStore{db: db}
}

func (s *PatientStore) List(ctx context.Context, page, size int) ([]domain.PatientRecord, int64, error) {
	offset, ok := domain.PageOffset(page, size)
	if !ok {
		total, err := s.db.NewSelect().Model((*patientRow)(nil)).Count(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("count patients: %w", err)
		}
		return []domain.PatientRecord{}, int64(total), nil
	}

	var rows []patientRow
	total, err := s.db.NewSelect().
		Model(&rows).
		Order("id ASC").
		Limit(size).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}

	out := make([]domain.PatientRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, int64(total), nil
}

func (s *PatientStore) FindByID(ctx context.Context, id string) (*domain.PatientRecord, error) {
	return s.find(ctx, "id = ?", id)
}

func (s *PatientStore) FindByUsername(ctx context.Context, username string) (*domain.PatientRecord, error) {
	if username == "" {
		return nil, domain.ErrPatientNotFound
	}
	return s.find(ctx, "username = ?", username)
}

func (s *PatientStore) find(ctx context.Context, where string, arg interface{}) (*domain.PatientRecord, error) {
	var row patientRow
	err := s.db.NewSelect().Model(&row).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	rec := row.toDomain()
	return &rec, nil
}

func (s *PatientStore) Create(ctx context.Context, p *domain.PatientRecord) (*domain.PatientRecord, error) {
	row := patientRow{
		ID:         p.ID,
		Username:   p.Username,
		FullName:   p.FullName,
		Email:      p.Email,
		Phone:      p.Phone,
		Gender:     p.Gender,
		BloodGroup: p.BloodGroup,
		BirthDate:  p.BirthDate.UTC(),
		CreatedAt:  p.CreatedAt.UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if row.Username != "" {
			linked, err := tx.NewSelect().Model((*patientRow)(nil)).Where("username = ?", row.Username).Exists(ctx)
			if err != nil {
				return err
			}
			if linked {
				return fmt.Errorf("%w: patient username %q already linked", domain.ErrValidation, row.Username)
			}
		}
		_, err := tx.NewInsert().Model(&row).Exec(ctx)
		return err
	})
	if errors.Is(err, domain.ErrValidation) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	rec := row.toDomain()
	return &rec, nil
}

func (r patientRow) toDomain() domain.PatientRecord {
	return domain.PatientRecord{
		ID:         r.ID,
		Username:   r.Username,
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		Gender:     r.Gender,
		BloodGroup: r.BloodGroup,
		BirthDate:  r.BirthDate.UTC(),
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

type DoctorStore struct {
	db *bun.DB
}

func NewDoctorStore(db *bun.DB) *DoctorStore {
	return &DoctorStore{db: db}
}

// List returns every doctor ordered by name.
func (s *DoctorStore) List(ctx context.Context) ([]domain.Doctor, error) {
	var rows []doctorRow
	if err := s.db.NewSelect().Model(&rows).Order("full_name ASC", "id ASC").Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	out := make([]domain.Doctor, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *DoctorStore) FindByID(ctx context.Context, id string) (*domain.Doctor, error) {
	return s.find(ctx, "id = ?", id)
}

func (s *DoctorStore) FindByUsername(ctx context.Context, username string) (*domain.Doctor, error) {
	if username == "" {
		return nil, domain.ErrDoctorNotFound
	}
	return s.find(ctx, "username = ?", username)
}

func (s *DoctorStore) find(ctx context.Context, where string, arg interface{}) (*domain.Doctor, error) {
	var row doctorRow
	err := s.db.NewSelect().Model(&row).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	d := row.toDomain()
	return &d, nil
}

func (s *DoctorStore) Create(ctx context.Context, d *domain.Doctor) (*domain.Doctor, error) {
	row := doctorRow{
		ID:             d.ID,
		Username:       d.Username,
		FullName:       d.FullName,
		Specialization: d.Specialization,
		Department:     d.Department,
		Email:          d.Email,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if row.Username != "" {
			linked, err := tx.NewSelect().Model((*doctorRow)(nil)).Where("username = ?", row.Username).Exists(ctx)
			if err != nil {
				return err
			}
			if linked {
				return fmt.Errorf("%w: doctor username %q already linked", domain.ErrValidation, row.Username)
			}
		}
		_, err := tx.NewInsert().Model(&row).Exec(ctx)
		return err
	})
	if errors.Is(err, domain.ErrValidation) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("insert doctor: %w", err)
	}
	created := row.toDomain()
	return &created, nil
}

func (r doctorRow) toDomain() domain.Doctor {
	return domain.Doctor{
		ID:             r.ID,
		Username:       r.Username,
		FullName:       r.FullName,
		Specialization: r.Specialization,
		Department:     r.Department,
		Email:          r.Email,
	}
}
