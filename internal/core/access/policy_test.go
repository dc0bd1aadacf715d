package access

import (
	"errors"
	"strings"
	"testing"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

func principal(roles ...domain.Role) *domain.Principal {
	return &domain.Principal{ID: "p1", Username: "someone", Roles: domain.NewRoleSet(roles...)}
}

func TestDefaultPolicy_PublicPaths(t *testing.T) {
	p := DefaultPolicy()

	for _, path := range []string{"/public/doctors", "/public", "/public/a/b/c", "/login", "/logout", "/health", "/health/ready", "/metrics", "/swagger/index.html"} {
		if err := p.Evaluate(path, nil); err != nil {
			t.Fatalf("%s: expected public access, got %v", path, err)
		}
	}
}

func TestDefaultPolicy_AdminRequiresAdmin(t *testing.T) {
	p := DefaultPolicy()

	if err := p.Evaluate("/admin/patients", nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without principal, got %v", err)
	}
	for _, roles := range [][]domain.Role{{domain.RoleDoctor}, {domain.RolePatient}, {domain.RoleDoctor, domain.RolePatient}} {
		if err := p.Evaluate("/admin/patients", principal(roles...)); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("roles %v: expected ErrForbidden, got %v", roles, err)
		}
	}
	if err := p.Evaluate("/admin/patients", principal(domain.RoleAdmin)); err != nil {
		t.Fatalf("admin denied: %v", err)
	}
}

func TestDefaultPolicy_DoctorsPaths(t *testing.T) {
	p := DefaultPolicy()

	for _, r := range []domain.Role{domain.RoleDoctor, domain.RoleAdmin} {
		if err := p.Evaluate("/doctors/appointments", principal(r)); err != nil {
			t.Fatalf("%s denied on /doctors/appointments: %v", r, err)
		}
	}
	if err := p.Evaluate("/doctors/appointments", principal(domain.RolePatient)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("patient should be forbidden, got %v", err)
	}
}

func TestDefaultPolicy_PatientsPaths(t *testing.T) {
	p := DefaultPolicy()

	for _, r := range []domain.Role{domain.RolePatient, domain.RoleAdmin} {
		if err := p.Evaluate("/patients/profile", principal(r)); err != nil {
			t.Fatalf("%s denied on /patients/profile: %v", r, err)
		}
	}
	if err := p.Evaluate("/patients/appointments", principal(domain.RoleDoctor)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("doctor should be forbidden, got %v", err)
	}
}

func TestDefaultPolicy_EmptyRoleSetDeniedEverywhere(t *testing.T) {
	p := DefaultPolicy()
	roleless := &domain.Principal{ID: "u1", Username: "ghost"}

	for _, r := range p.Rules() {
		if r.IsPublic() {
			continue
		}
		path := r.Pattern
		if base, ok := strings.CutSuffix(path, subtreeSuffix); ok {
			path = base + "/anything"
		}
		if err := p.Evaluate(path, roleless); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: roleless principal should be forbidden, got %v", path, err)
		}
	}
}

func TestPolicy_DefaultDeny(t *testing.T) {
	p := DefaultPolicy()

	for _, path := range []string{"/", "/internal", "/publicity", "/administrator", "/doctorsX"} {
		if err := p.Evaluate(path, principal(domain.RoleAdmin)); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected default deny, got %v", path, err)
		}
	}
}

func TestPolicy_DotSegmentsCannotEscape(t *testing.T) {
	p := DefaultPolicy()

	if err := p.Evaluate("/public/../admin/patients", nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected traversal to be judged as /admin/patients, got %v", err)
	}
	if err := p.Evaluate("/public/./doctors/", nil); err != nil {
		t.Fatalf("expected cleaned public path to be allowed, got %v", err)
	}
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	p := MustPolicy(
		Public("/admin/status"),
		RequireAny("/admin/**", domain.RoleAdmin),
	)

	if err := p.Evaluate("/admin/status", nil); err != nil {
		t.Fatalf("specific public rule should win, got %v", err)
	}
	if err := p.Evaluate("/admin/patients", nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestNewPolicy_RejectsShadowedRule(t *testing.T) {
	_, err := NewPolicy(
		RequireAny("/admin/**", domain.RoleAdmin),
		Public("/admin/status"),
	)
	if !errors.Is(err, ErrShadowedRule) {
		t.Fatalf("expected ErrShadowedRule, got %v", err)
	}

	_, err = NewPolicy(Public("/login"), Public("/login"))
	if !errors.Is(err, ErrShadowedRule) {
		t.Fatalf("expected duplicate exact rule to be rejected, got %v", err)
	}

	if _, err := NewPolicy(RequireAny("/a/**", domain.RoleAdmin), RequireAny("/ab/**", domain.RoleAdmin)); err != nil {
		t.Fatalf("sibling prefixes must not shadow: %v", err)
	}
}

func TestNewPolicy_RejectsInvalidRules(t *testing.T) {
	if _, err := NewPolicy(Public("")); err == nil {
		t.Fatalf("expected error for empty pattern")
	}
	if _, err := NewPolicy(Public("admin")); err == nil {
		t.Fatalf("expected error for relative pattern")
	}
	if _, err := NewPolicy(RequireAny("/admin/**")); err == nil {
		t.Fatalf("expected error for role rule without roles")
	}
}

func TestRule_Matches(t *testing.T) {
	r := RequireAny("/doctors/**", domain.RoleDoctor)
	cases := map[string]bool{
		"/doctors":              true,
		"/doctors/":             true,
		"/doctors/appointments": true,
		"/doctors2":             false,
		"/doctor":               false,
		"doctors/appointments":  true,
	}
	for path, want := range cases {
		if got := r.Matches(path); got != want {
			t.Fatalf("Matches(%q) = %v, want %v", path, got, want)
		}
	}

	exact := Public("/login")
	if !exact.Matches("/login") || exact.Matches("/login/extra") {
		t.Fatalf("exact pattern matched wrong paths")
	}
}
