// Package access decides which principals may reach which request paths.
//
// A Policy is an ordered list of rules evaluated first-match-wins. Each rule
// either admits everyone (public) or requires an authenticated principal whose
// role set intersects the rule's roles. A path matched by no rule is denied.
// Policies are immutable after construction and safe for concurrent use.
package access

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/hospitalmgmt/hospital-api/internal/core/domain"
)

const subtreeSuffix = "/**"

// Rule maps a path pattern to its access requirement.
//
// Pattern "/x/**" matches "/x" and every path below "/x/". Any other pattern
// matches exactly one path.
type Rule struct {
	Pattern string
	Roles   domain.RoleSet
	public  bool
}

// Public admits every request on pattern without authentication.
func Public(pattern string) Rule {
	return Rule{Pattern: pattern, public: true}
}

// RequireAny admits authenticated principals holding at least one of roles.
func RequireAny(pattern string, roles ...domain.Role) Rule {
	return Rule{Pattern: pattern, Roles: domain.NewRoleSet(roles...)}
}

// IsPublic reports whether the rule skips authentication.
func (r Rule) IsPublic() bool {
	return r.public
}

// Matches reports whether the cleaned path falls under the rule's pattern.
func (r Rule) Matches(p string) bool {
	p = cleanPath(p)
	if base, ok := strings.CutSuffix(r.Pattern, subtreeSuffix); ok {
		if base == "" {
			return true
		}
		return p == base || strings.HasPrefix(p, base+"/")
	}
	return p == r.Pattern
}

// Authorize checks a principal against the rule. Public rules accept a nil
// principal; role rules return ErrUnauthenticated for nil and ErrForbidden when
// the principal's roles miss the rule's roles, including an empty role set.
func (r Rule) Authorize(p *domain.Principal) error {
	if r.public {
		return nil
	}
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if !p.Roles.Intersects(r.Roles) {
		return domain.ErrForbidden
	}
	return nil
}

// String renders the rule for logs.
func (r Rule) String() string {
	if r.public {
		return r.Pattern + " public"
	}
	return r.Pattern + " " + strings.Join(r.Roles.Strings(), "|")
}

// covers reports whether every path matched by other is also matched by r.
func (r Rule) covers(other Rule) bool {
	base, ok := strings.CutSuffix(r.Pattern, subtreeSuffix)
	if !ok {
		return r.Pattern == other.Pattern
	}
	otherBase := strings.TrimSuffix(other.Pattern, subtreeSuffix)
	if base == "" {
		return true
	}
	return otherBase == base || strings.HasPrefix(otherBase, base+"/")
}

// ErrShadowedRule is returned by NewPolicy when a rule can never match
// because an earlier rule already covers its pattern.
var ErrShadowedRule = errors.New("access: rule is shadowed by an earlier rule")

// Policy is an ordered, immutable rule list.
type Policy struct {
	rules []Rule
}

// NewPolicy validates rules and fixes their order. A rule whose pattern is
// already fully covered by an earlier rule can never match and is rejected, so
// specific patterns must precede broader ones.
func NewPolicy(rules ...Rule) (*Policy, error) {
	for i, r := range rules {
		if r.Pattern == "" || !strings.HasPrefix(r.Pattern, "/") {
			return nil, fmt.Errorf("access: rule %d: pattern %q must start with /", i, r.Pattern)
		}
		if !r.public && len(r.Roles) == 0 {
			return nil, fmt.Errorf("access: rule %d (%s) requires at least one role", i, r.Pattern)
		}
		for j := 0; j < i; j++ {
			if rules[j].covers(r) {
				return nil, fmt.Errorf("%w: %q after %q", ErrShadowedRule, r.Pattern, rules[j].Pattern)
			}
		}
	}
	return &Policy{rules: append([]Rule(nil), rules...)}, nil
}

// MustPolicy is NewPolicy for static rule lists known to be valid.
func MustPolicy(rules ...Rule) *Policy {
	p, err := NewPolicy(rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// Match returns the first rule matching path.
func (p *Policy) Match(path string) (Rule, bool) {
	for _, r := range p.rules {
		if r.Matches(path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Evaluate decides a request for path made by principal (nil when the request
// carries no valid session). Unmatched paths are forbidden.
func (p *Policy) Evaluate(path string, principal *domain.Principal) error {
	r, ok := p.Match(path)
	if !ok {
		return domain.ErrForbidden
	}
	return r.Authorize(principal)
}

// Rules returns a copy of the ordered rule list.
func (p *Policy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
