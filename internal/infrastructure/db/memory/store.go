// Package memory holds map-backed stores for tests and demo deployments.
// Every store is safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

type PrincipalStore struct {
	mu         sync.RWMutex
	byUsername map[string]domain.Principal
}

func NewPrincipalStore() *PrincipalStore {
	return &PrincipalStore{byUsername: make(map[string]domain.Principal)}
}

func (s *PrincipalStore) FindByUsername(_ context.Context, username string) (*domain.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byUsername[username]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	p.Roles = append(domain.RoleSet(nil), p.Roles...)
	return &p, nil
}

func (s *PrincipalStore) Create(_ context.Context, p *domain.Principal) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[p.Username]; exists {
		return nil, domain.ErrPrincipalExists
	}
	stored := *p
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.Roles = append(domain.RoleSet(nil), p.Roles...)
	s.byUsername[stored.Username] = stored

	out := stored
	out.Roles = append(domain.RoleSet(nil), stored.Roles...)
	return &out, nil
}

type PatientStore struct {
	mu   sync.RWMutex
	byID map[string]domain.PatientRecord
}

func NewPatientStore() *PatientStore {
	return &PatientStore{byID: make(map[string]domain.PatientRecord)}
}

func (s *PatientStore) List(_ context.Context, page, size int) ([]domain.PatientRecord, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.PatientRecord, 0, len(s.byID))
	for _, p := range s.byID {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	start, ok := domain.PageOffset(page, size)
	if !ok || start >= len(all) {
		return []domain.PatientRecord{}, total, nil
	}
	end := start + size
	if end < start || end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *PatientStore) FindByID(_ context.Context, id string) (*domain.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrPatientNotFound
	}
	return &p, nil
}

func (s *PatientStore) FindByUsername(_ context.Context, username string) (*domain.PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if username == "" {
		return nil, domain.ErrPatientNotFound
	}
	for _, p := range s.byID {
		if p.Username == username {
			return &p, nil
		}
	}
	return nil, domain.ErrPatientNotFound
}

func (s *PatientStore) Create(_ context.Context, p *domain.PatientRecord) (*domain.PatientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Username != "" {
		for _, existing := range s.byID {
			if existing.Username == p.Username {
				return nil, fmt.Errorf("%w: patient username %q already linked", domain.ErrValidation, p.Username)
			}
		}
	}
	stored := *p
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.byID[stored.ID] = stored
	return &stored, nil
}

type DoctorStore struct {
	mu   sync.RWMutex
	byID map[string]domain.Doctor
}

func NewDoctorStore() *DoctorStore {
	return &DoctorStore{byID: make(map[string]domain.Doctor)}
}

// List returns every doctor ordered by name.
func (s *DoctorStore) List(_ context.Context) ([]domain.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Doctor, 0, len(s.byID))
	for _, d := range s.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *DoctorStore) FindByID(_ context.Context, id string) (*domain.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrDoctorNotFound
	}
	return &d, nil
}

func (s *DoctorStore) FindByUsername(_ context.Context, username string) (*domain.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if username == "" {
		return nil, domain.ErrDoctorNotFound
	}
	for _, d := range s.byID {
		if d.Username == username {
			return &d, nil
		}
	}
	return nil, domain.ErrDoctorNotFound
}

func (s *DoctorStore) Create(_ context.Context, d *domain.Doctor) (*domain.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.Username != "" {
		for _, existing := range s.byID {
			if existing.Username == d.Username {
				return nil, fmt.Errorf("%w: doctor username %q already linked", domain.ErrValidation, d.Username)
			}
		}
	}
	stored := *d
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.byID[stored.ID] = stored
	return &stored, nil
}

type AppointmentStore struct {
	mu    sync.RWMutex
	items []domain.Appointment
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{}
}

func (s *AppointmentStore) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *a
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.items = append(s.items, stored)
	return &stored, nil
}

func (s *AppointmentStore) FindByID(_ context.Context, id string) (*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.items {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrAppointmentNotFound
}

func (s *AppointmentStore) UpdateStatus(_ context.Context, id string, from, to domain.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if s.items[i].Status != from {
			return fmt.Errorf("%w (appointment %s is %s)", domain.ErrInvalidTransition, id, s.items[i].Status)
		}
		s.items[i].Status = to
		return nil
	}
	return domain.ErrAppointmentNotFound
}

func (s *AppointmentStore) ListByDoctor(_ context.Context, doctorID string) ([]domain.Appointment, error) {
	return s.filter(func(a domain.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (s *AppointmentStore) ListByPatient(_ context.Context, patientID string) ([]domain.Appointment, error) {
	return s.filter(func(a domain.Appointment) bool { return a.PatientID == patientID }), nil
}

func (s *AppointmentStore) filter(keep func(domain.Appointment) bool) []domain.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Appointment{}
	for _, a := range s.items {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}
