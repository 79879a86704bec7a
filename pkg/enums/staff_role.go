package enums

// StaffRole identifies what a counter login is allowed to do.
type StaffRole string

const (
	StaffRoleCashier StaffRole = "cashier"
	StaffRoleManager StaffRole = "manager"
	StaffRoleAdmin   StaffRole = "admin"
)

func (r StaffRole) IsValid() bool {
	switch r {
	case StaffRoleCashier, StaffRoleManager, StaffRoleAdmin:
		return true
	}
	return false
}

// CanVoid reports whether the role may reverse a completed sale.
func (r StaffRole) CanVoid() bool {
	return r == StaffRoleManager || r == StaffRoleAdmin
}
