package policy

import "fmt"

// Effect is the verdict a rule contributes to an authorization decision.
type Effect string

const (
	// EffectAllow explicitly permits the matched action.
	EffectAllow Effect = "Allow"

	// EffectDeny explicitly forbids the matched action.
	EffectDeny Effect = "Deny"
)

// ParseEffect converts a wire-format effect string into an Effect.
// Only the exact values "Allow" and "Deny" are accepted.
func ParseEffect(s string) (Effect, error) {
	switch Effect(s) {
	case EffectAllow:
		return EffectAllow, nil
	case EffectDeny:
		return EffectDeny, nil
	default:
		return "", fmt.Errorf("invalid effect %q: must be %q or %q", s, EffectAllow, EffectDeny)
	}
}

// Valid reports whether the effect is one of the two defined values.
func (e Effect) Valid() bool {
	return e == EffectAllow || e == EffectDeny
}

// Priority orders rules during evaluation. Higher values win; no fixed range
// is enforced beyond what fits in an int.
type Priority int

// Subject identifies the principal a rule applies to, e.g. "user:123".
type Subject struct {
	id string
}

// NewSubject creates a Subject from its string identifier.
// The identifier must be non-empty.
func NewSubject(id string) (Subject, error) {
	if id == "" {
		return Subject{}, fmt.Errorf("subject identifier cannot be empty")
	}
	return Subject{id: id}, nil
}

// ID returns the subject's string identifier.
func (s Subject) ID() string {
	return s.id
}

// Resource identifies the object a rule applies to, e.g. "document:456",
// optionally tagged with a resource type.
type Resource struct {
	id  string
	typ string
}

// NewResource creates a Resource from its string identifier.
// The identifier must be non-empty.
func NewResource(id string) (Resource, error) {
	if id == "" {
		return Resource{}, fmt.Errorf("resource identifier cannot be empty")
	}
	return Resource{id: id}, nil
}

// NewTypedResource creates a Resource carrying a type tag alongside its
// identifier. The identifier must be non-empty; the type tag may be empty.
func NewTypedResource(id, typ string) (Resource, error) {
	if id == "" {
		return Resource{}, fmt.Errorf("resource identifier cannot be empty")
	}
	return Resource{id: id, typ: typ}, nil
}

// ID returns the resource's string identifier.
func (r Resource) ID() string {
	return r.id
}

// Type returns the resource's type tag, which may be empty.
func (r Resource) Type() string {
	return r.typ
}

// Rule is a single access-control statement: a subject may (or may not)
// perform an action, optionally scoped to one resource and one domain.
type Rule struct {
	// Subject is the principal identifier. Required.
	Subject string

	// Resource is the object identifier. Empty means the rule applies to
	// any resource.
	Resource string

	// Action names the operation the rule governs. Required.
	Action string

	// Effect is the Allow/Deny verdict. Required.
	Effect Effect

	// Priority orders this rule relative to others during evaluation.
	Priority Priority

	// Domain optionally scopes the rule to a tenant or realm. Empty means
	// the rule applies in any domain.
	Domain string
}

// NewRule creates a Rule and validates its required fields.
func NewRule(subject, resource, action string, effect Effect, priority Priority, domain string) (Rule, error) {
	if subject == "" {
		return Rule{}, fmt.Errorf("rule subject cannot be empty")
	}
	if action == "" {
		return Rule{}, fmt.Errorf("rule action cannot be empty")
	}
	if !effect.Valid() {
		return Rule{}, fmt.Errorf("invalid effect %q: must be %q or %q", effect, EffectAllow, EffectDeny)
	}
	return Rule{
		Subject:  subject,
		Resource: resource,
		Action:   action,
		Effect:   effect,
		Priority: priority,
		Domain:   domain,
	}, nil
}

// Policy is an ordered sequence of rules. Insertion order is preserved; the
// storage layer never re-sorts by priority, that is the evaluation engine's
// job.
type Policy struct {
	rules []Rule
}

// NewPolicy creates a Policy from the given rules, preserving their order.
// An empty or nil rule slice yields a valid, empty policy.
func NewPolicy(rules []Rule) Policy {
	// Copy so later mutation of the caller's slice cannot leak in.
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return Policy{rules: copied}
}

// Rules returns the policy's rules in insertion order. The returned slice is
// a copy; mutating it does not affect the policy.
func (p Policy) Rules() []Rule {
	copied := make([]Rule, len(p.rules))
	copy(copied, p.rules)
	return copied
}

// Len returns the number of rules in the policy.
func (p Policy) Len() int {
	return len(p.rules)
}

// IsEmpty reports whether the policy contains no rules.
func (p Policy) IsEmpty() bool {
	return len(p.rules) == 0
}
