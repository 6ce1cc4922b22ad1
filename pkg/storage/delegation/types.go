package delegation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is a delegation lifecycle state.
type State string

const (
	// StateActive marks a delegation that is currently in force.
	StateActive State = "active"

	// StateRevoked marks a delegation that was explicitly revoked.
	StateRevoked State = "revoked"

	// StateExpired marks a delegation past its expiry. This state is
	// derived at query time, not persisted.
	StateExpired State = "expired"
)

// Scope bounds what a delegation grants: a set of resource patterns, each
// optionally ending in a wildcard segment (e.g. "document:*"), and a set of
// action names. Both sets empty means the delegation grants nothing.
type Scope struct {
	Resources []string `json:"resources,omitempty"`
	Actions   []string `json:"actions,omitempty"`
}

// Delegation is a grant of a scoped capability set from one principal
// (the delegator) to another (the delegate).
type Delegation struct {
	// ID uniquely identifies the delegation across the store.
	ID string `json:"id"`

	// DelegatorID is the granting principal.
	DelegatorID string `json:"delegator_id"`

	// DelegateID is the receiving principal.
	DelegateID string `json:"delegate_id"`

	// Scope bounds what is granted.
	Scope Scope `json:"scope"`

	// CreatedAt is when the delegation was issued.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the delegation lapses. Nil means no expiry.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Transitive allows the delegate to delegate the granted scope onward.
	Transitive bool `json:"transitive"`

	// Status is the persisted lifecycle state, active or revoked. Expiry is
	// never persisted here.
	Status State `json:"status"`

	// RevokedAt records when the delegation was revoked, if it was.
	RevokedAt *time.Time `json:"revoked_at,omitempty"`

	// Metadata carries caller-defined annotations.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// New creates an active delegation with a generated id and the current time
// as creation timestamp.
func New(delegatorID, delegateID string, scope Scope, expiresAt *time.Time, transitive bool) (*Delegation, error) {
	d := &Delegation{
		ID:          uuid.NewString(),
		DelegatorID: delegatorID,
		DelegateID:  delegateID,
		Scope:       scope,
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   expiresAt,
		Transitive:  transitive,
		Status:      StateActive,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the delegation's invariants.
func (d *Delegation) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("delegation id cannot be empty")
	}
	// Ids become filenames; keep them out of parent directories.
	if strings.ContainsAny(d.ID, `/\`) || d.ID == "." || d.ID == ".." {
		return fmt.Errorf("delegation id %q contains path characters", d.ID)
	}
	if d.DelegatorID == "" {
		return fmt.Errorf("delegator id cannot be empty")
	}
	if d.DelegateID == "" {
		return fmt.Errorf("delegate id cannot be empty")
	}
	if d.Status != StateActive && d.Status != StateRevoked {
		return fmt.Errorf("invalid persisted status %q", d.Status)
	}
	if d.ExpiresAt != nil && d.ExpiresAt.Before(d.CreatedAt) {
		return fmt.Errorf("delegation expires at %s, before its creation at %s", d.ExpiresAt, d.CreatedAt)
	}
	return nil
}

// ExpiredAt reports whether the delegation is past its expiry at the given
// evaluation time.
func (d *Delegation) ExpiredAt(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}

// EffectiveState derives the lifecycle state at the given evaluation time.
// Revocation wins over expiry.
func (d *Delegation) EffectiveState(now time.Time) State {
	if d.Status == StateRevoked {
		return StateRevoked
	}
	if d.ExpiredAt(now) {
		return StateExpired
	}
	return d.Status
}
