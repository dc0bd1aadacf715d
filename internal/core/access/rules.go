package access

import "github.com/hospitalmgmt/hospital-api/internal/core/domain"

// DefaultRules is the hospital API's rule list, most specific first.
func DefaultRules() []Rule {
	return []Rule{
		Public("/public/**"),
		Public("/login"),
		Public("/logout"),
		Public("/health/**"),
		Public("/metrics"),
		Public("/swagger/**"),
		RequireAny("/admin/**", domain.RoleAdmin),
		RequireAny("/doctors/**", domain.RoleDoctor, domain.RoleAdmin),
		RequireAny("/patients/**", domain.RolePatient, domain.RoleAdmin),
	}
}

// DefaultPolicy builds a Policy from DefaultRules.
func DefaultPolicy() *Policy {
	return MustPolicy(DefaultRules()...)
}
