package model

type Role string

const (
	RolePlayer   Role = "player"
	RoleGuardian Role = "guardian"
	RoleAcademy  Role = "academy"
	RoleClinic   Role = "clinic"
	RoleAdmin    Role = "admin"
)

// IsEligibleOwner reports whether the role may hold a check-in code.
func (r Role) IsEligibleOwner() bool {
	return r == RolePlayer || r == RoleGuardian
}

// IsVenue reports whether the role may redeem check-in codes.
func (r Role) IsVenue() bool {
	return r == RoleAcademy || r == RoleClinic
}
