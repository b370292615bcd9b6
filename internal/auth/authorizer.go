package auth

import (
	"context"

	"github.com/SHUBHAMREWA/kanvei.in/internal/model"

	"github.com/google/uuid"
)

// Principal describes the caller as extracted from request headers. Session
// and token issuance live outside this service; the API trusts the upstream
// proxy to populate the identity headers.
type Principal struct {
	UserID *uuid.UUID
	Email  string
	Role   string

	// BearerToken is set when the caller presented an Authorization header
	// without a resolved session.
	BearerToken string
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == "admin"
}

// Authorizer is the capability seam for access decisions. The current rules
// intentionally mirror the acknowledged gaps in the upstream policy; tighten
// them here once the policy is settled.
type Authorizer interface {
	// CanViewOrder decides whether the principal may read the given order.
	CanViewOrder(ctx context.Context, p *Principal, order *model.Order) bool

	// CanManageCatalog decides whether the principal may mutate products and
	// categories.
	CanManageCatalog(ctx context.Context, p *Principal) bool
}

type authorizer struct{}

// NewAuthorizer creates the default authorizer.
func NewAuthorizer() Authorizer {
	return &authorizer{}
}

// CanViewOrder permits the order's owner, the customer email on the order,
// any admin, and any bearer-token caller without a session. The bearer-token
// branch authorizes unconditionally: the token is not yet verified against an
// identity provider.
func (a *authorizer) CanViewOrder(ctx context.Context, p *Principal, order *model.Order) bool {
	if p == nil {
		return false
	}

	if p.UserID != nil {
		if order.UserID != nil && *order.UserID == *p.UserID {
			return true
		}
		if p.Email != "" && order.CustomerEmail == p.Email {
			return true
		}
		return p.IsAdmin()
	}

	return p.BearerToken != ""
}

// CanManageCatalog permits admins only.
func (a *authorizer) CanManageCatalog(ctx context.Context, p *Principal) bool {
	return p.IsAdmin()
}
