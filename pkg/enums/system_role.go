package enums

// SystemRole is an account-wide role independent of any branch profile.
// Admins see every branch; everyone else is scoped to their profile's branch.
type SystemRole string

const (
	SystemRoleAdmin SystemRole = "admin"
)

// String implements fmt.Stringer.
func (r SystemRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known SystemRole.
func (r SystemRole) IsValid() bool {
	return r == SystemRoleAdmin
}
