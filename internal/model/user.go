package model

// Role is the kind of signed-in user.
type Role string

const (
	RoleElderly   Role = "elderly"
	RoleCaregiver Role = "caregiver"
)

// User is the signed-in session user as reported by the auth provider.
type User struct {
	ID   string `json:"id" mapstructure:"id" yaml:"id"`
	Role Role   `json:"role" mapstructure:"role" yaml:"role"`

	// Elderly lists the dependents a caregiver is associated with.
	Elderly []string `json:"elderly,omitempty" mapstructure:"elderly" yaml:"elderly"`
}

// CanSee reports whether records owned by elderlyID belong in u's view.
// A nil user sees nothing.
func (u *User) CanSee(elderlyID string) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleElderly:
		return elderlyID == u.ID
	case RoleCaregiver:
		for _, id := range u.Elderly {
			if id == elderlyID {
				return true
			}
		}
	}
	return false
}

// DefaultElderlyID returns the dependent new records are created for when
// the caller does not name one: the user's own id for an elderly user, the
// first association for a caregiver.
func (u *User) DefaultElderlyID() string {
	if u == nil {
		return ""
	}
	if u.Role == RoleElderly {
		return u.ID
	}
	if len(u.Elderly) > 0 {
		return u.Elderly[0]
	}
	return ""
}
