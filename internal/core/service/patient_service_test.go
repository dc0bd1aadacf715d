package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub stores
// ---------------------------------------------------------------------------

type stubPatientStore struct {
	records []domain.PatientRecord
	listErr error
	// lastPage and lastSize record the arguments of the last List call.
	lastPage, lastSize int
}

func (r *stubPatientStore) List(_ context.Context, page, size int) ([]domain.PatientRecord, int64, error) {
	r.lastPage, r.lastSize = page, size
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	sorted := append([]domain.PatientRecord(nil), r.records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	total := int64(len(sorted))
	start := page * size
	if start >= len(sorted) {
		return []domain.PatientRecord{}, total, nil
	}
	end := start + size
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], total, nil
}

func (r *stubPatientStore) FindByID(_ context.Context, id string) (*domain.PatientRecord, error) {
	for _, p := range r.records {
		if p.ID == id {
			clone := p
			return &clone, nil
		}
	}
	return nil, domain.ErrPatientNotFound
}

func (r *stubPatientStore) FindByUsername(_ context.Context, username string) (*domain.PatientRecord, error) {
	for _, p := range r.records {
		if username != "" && p.Username == username {
			clone := p
			return &clone, nil
		}
	}
	return nil, domain.ErrPatientNotFound
}

func (r *stubPatientStore) Create(_ context.Context, p *domain.PatientRecord) (*domain.PatientRecord, error) {
	clone := *p
	r.records = append(r.records, clone)
	return &clone, nil
}

func seededPatients(n int) *stubPatientStore {
	store := &stubPatientStore{}
	for i := n; i > 0; i-- {
		store.records = append(store.records, domain.PatientRecord{
			ID:        string(rune('a'+i-1)) + "-patient",
			FullName:  "Patient " + string(rune('A'+i-1)),
			Email:     string(rune('a'+i-1)) + "@example.com",
			BirthDate: time.Date(1990, 1, i, 0, 0, 0, 0, time.UTC),
		})
	}
	return store
}

func principal(username string, roles ...domain.Role) *domain.Principal {
	return &domain.Principal{ID: "p-" + username, Username: username, Roles: domain.NewRoleSet(roles...)}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestPatientService_List_EmptyStore(t *testing.T) {
	svc := NewPatientService(&stubPatientStore{}, &stubAppointmentStore{})

	page, err := svc.List(context.Background(), domain.PageRequest{Page: 0, Size: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", page.Items)
	}
	if page.Total != 0 || page.TotalPages != 0 {
		t.Fatalf("expected total 0, got %d (%d pages)", page.Total, page.TotalPages)
	}
}

func TestPatientService_List_OrderedSummaries(t *testing.T) {
	store := seededPatients(5)
	svc := NewPatientService(store, &stubAppointmentStore{})

	page, err := svc.List(context.Background(), domain.PageRequest{Page: 0, Size: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "a-patient" || page.Items[1].ID != "b-patient" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Fatalf("expected total 5 over 3 pages, got %d over %d", page.Total, page.TotalPages)
	}
	if page.Items[0].Email != "a@example.com" {
		t.Fatalf("summary lost fields: %+v", page.Items[0])
	}
}

func TestPatientService_List_PageBeyondEnd(t *testing.T) {
	svc := NewPatientService(seededPatients(3), &stubAppointmentStore{})

	page, err := svc.List(context.Background(), domain.PageRequest{Page: 7, Size: 10})
	if err != nil {
		t.Fatalf("expected no error past the last page, got %v", err)
	}
	if len(page.Items) != 0 || page.Total != 3 {
		t.Fatalf("expected empty page with total 3, got %d items, total %d", len(page.Items), page.Total)
	}
}

func TestPatientService_List_Defaults(t *testing.T) {
	store := seededPatients(1)
	svc := NewPatientService(store, &stubAppointmentStore{})

	if _, err := svc.List(context.Background(), domain.PageRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastPage != 0 || store.lastSize != domain.DefaultPageSize {
		t.Fatalf("expected page 0 size %d, got page %d size %d", domain.DefaultPageSize, store.lastPage, store.lastSize)
	}

	if _, err := svc.List(context.Background(), domain.PageRequest{Size: 5000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.lastSize != domain.MaxPageSize {
		t.Fatalf("expected size capped at %d, got %d", domain.MaxPageSize, store.lastSize)
	}
}

func TestPatientService_List_NegativePage(t *testing.T) {
	store := seededPatients(1)
	svc := NewPatientService(store, &stubAppointmentStore{})

	if _, err := svc.List(context.Background(), domain.PageRequest{Page: -1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPatientService_List_StoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewPatientService(&stubPatientStore{listErr: boom}, &stubAppointmentStore{})

	if _, err := svc.List(context.Background(), domain.PageRequest{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func profileStore() *stubPatientStore {
	return &stubPatientStore{records: []domain.PatientRecord{
		{ID: "pat-1", Username: "nina", FullName: "Nina"},
		{ID: "pat-2", Username: "omar", FullName: "Omar"},
	}}
}

func TestPatientService_Profile_Own(t *testing.T) {
	svc := NewPatientService(profileStore(), &stubAppointmentStore{})

	rec, err := svc.Profile(context.Background(), principal("nina", domain.RolePatient), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "pat-1" {
		t.Fatalf("expected own record, got %s", rec.ID)
	}

	if _, err := svc.Profile(context.Background(), principal("nina", domain.RolePatient), "pat-1"); err != nil {
		t.Fatalf("naming own record should succeed, got %v", err)
	}
}

func TestPatientService_Profile_OtherPatientForbidden(t *testing.T) {
	svc := NewPatientService(profileStore(), &stubAppointmentStore{})

	if _, err := svc.Profile(context.Background(), principal("nina", domain.RolePatient), "pat-2"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPatientService_Profile_Admin(t *testing.T) {
	svc := NewPatientService(profileStore(), &stubAppointmentStore{})
	admin := principal("root", domain.RoleAdmin)

	rec, err := svc.Profile(context.Background(), admin, "pat-2")
	if err != nil || rec.Username != "omar" {
		t.Fatalf("expected omar's record, got %+v, %v", rec, err)
	}
	if _, err := svc.Profile(context.Background(), admin, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation without patient_id, got %v", err)
	}
	if _, err := svc.Profile(context.Background(), admin, "missing"); !errors.Is(err, domain.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestPatientService_Profile_NoLinkedRecord(t *testing.T) {
	svc := NewPatientService(profileStore(), &stubAppointmentStore{})

	if _, err := svc.Profile(context.Background(), principal("paul", domain.RolePatient), ""); !errors.Is(err, domain.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestPatientService_Profile_WrongRole(t *testing.T) {
	svc := NewPatientService(profileStore(), &stubAppointmentStore{})

	if _, err := svc.Profile(context.Background(), principal("doc", domain.RoleDoctor), ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Profile(context.Background(), principal("nobody"), ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for roleless principal, got %v", err)
	}
	if _, err := svc.Profile(context.Background(), nil, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPatientService_Appointments(t *testing.T) {
	appts := &stubAppointmentStore{items: []domain.Appointment{
		{ID: "a2", PatientID: "pat-1", DoctorID: "doc-2", StartsAt: slot.Add(time.Hour)},
		{ID: "a1", PatientID: "pat-1", DoctorID: "doc-1", StartsAt: slot},
		{ID: "a3", PatientID: "pat-2", DoctorID: "doc-1", StartsAt: slot},
	}}
	svc := NewPatientService(profileStore(), appts)

	list, err := svc.Appointments(context.Background(), principal("nina", domain.RolePatient), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a1" || list[1].ID != "a2" {
		t.Fatalf("expected a1, a2, got %+v", list)
	}

	list, err = svc.Appointments(context.Background(), principal("root", domain.RoleAdmin), "pat-2")
	if err != nil || len(list) != 1 || list[0].ID != "a3" {
		t.Fatalf("expected [a3], got %+v, %v", list, err)
	}

	list, err = svc.Appointments(context.Background(), principal("omar", domain.RolePatient), "")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected omar's single appointment, got %+v, %v", list, err)
	}
}
