package models

type UserRole string

const (
	RoleMentor UserRole = "mentor"
	RoleMentee UserRole = "mentee"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleMentor, RoleMentee, RoleAdmin:
		return true
	}
	return false
}
