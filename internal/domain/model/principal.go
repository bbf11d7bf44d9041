package model

// Role names a capability granted by the identity provider.
type Role string

const (
	RoleUser    Role = "USER"
	RoleAdmin   Role = "ADMIN"
	RoleKitchen Role = "KITCHEN"
)

// Principal is the authenticated actor of a request.
type Principal struct {
	UserID int64
	Roles  []Role
}

// HasRole reports whether the principal was granted role.
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// CanCook reports whether the principal may act on kitchen items.
func (p Principal) CanCook() bool {
	return p.HasRole(RoleKitchen) || p.HasRole(RoleAdmin)
}
