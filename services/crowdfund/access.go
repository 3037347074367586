package crowdfund

import "sync"

// AccessController holds the administrative identity, fixed at construction.
type AccessController struct {
	admin string
}

// NewAccessController creates a controller for the given admin identity.
func NewAccessController(admin string) *AccessController {
	return &AccessController{admin: admin}
}

// IsAdmin reports whether the identity is the administrator.
func (a *AccessController) IsAdmin(identity string) bool {
	return identity != "" && identity == a.admin
}

// RecipientRegistry is the mutable set of addresses the administrator trusts
// to receive payouts. Lookups are always live; callers must never cache the
// result as truth.
type RecipientRegistry struct {
	access *AccessController

	mu       sync.RWMutex
	verified map[string]bool
}

// NewRecipientRegistry creates an empty registry guarded by the controller.
func NewRecipientRegistry(access *AccessController) *RecipientRegistry {
	return &RecipientRegistry{
		access:   access,
		verified: make(map[string]bool),
	}
}

// Set overwrites the verified flag for a recipient. Idempotent. Admin only.
func (r *RecipientRegistry) Set(recipient string, verified bool, caller string) error {
	if !r.access.IsAdmin(caller) {
		return ErrNotAuthorized
	}
	if recipient == "" {
		return ErrInvalidRecipient
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.verified[recipient] = verified
	return nil
}

// IsVerified reports the current verified flag for a recipient.
func (r *RecipientRegistry) IsVerified(recipient string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.verified[recipient]
}
