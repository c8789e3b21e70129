package domain

import "time"

// Application roles carried in the auth token.
const (
	RoleAdmin    = "admin"
	RoleDirector = "director"
	RoleMusician = "musician"
)

// AuthContext is the resolved caller identity supplied by the auth layer.
// The engine never performs credential checks itself; it only consumes this
// triple.
type AuthContext struct {
	UserID   string
	Role     string
	ChurchID string
}

// CanManageEvents reports whether the caller may create, publish or cancel
// events for their church.
func (a AuthContext) CanManageEvents() bool {
	return a.Role == RoleDirector || a.Role == RoleAdmin
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, role, churchID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the resolved caller identity.
type TokenVerifier interface {
	Verify(token string) (AuthContext, error)
}
