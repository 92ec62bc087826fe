package domain

// Role роль пользователя из заголовка X-User-Role
type Role string

const (
	RoleClient Role = "client"
	RoleBarber Role = "barber"
	RoleAdmin  Role = "admin"
)

// IsValid returns true for known roles
func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleBarber || r == RoleAdmin
}

// Actor пользователь, выполняющий запрос
// Для барбера UserID совпадает с ID барбера в каталоге
type Actor struct {
	UserID int64
	Role   Role
}

// CanManageBarber returns true if the actor may change the barber's schedule or see the agenda
func (a Actor) CanManageBarber(barberID int64) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleBarber:
		return a.UserID == barberID
	default:
		return false
	}
}
