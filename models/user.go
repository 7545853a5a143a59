package models

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleStaff   Role = "STAFF"
	RoleManager Role = "MANAGER"
)

func (r Role) IsValid() bool {
	return r == RoleStaff || r == RoleManager
}

type StaffUser struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RestaurantID uuid.UUID `db:"restaurant_id" json:"restaurant_id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Active       bool      `db:"is_active" json:"active"`
}

// Principal is the verified caller of a staff operation. RestaurantID is the
// tenancy filter for every staff read and write.
type Principal struct {
	UserID       uuid.UUID
	Role         Role
	RestaurantID uuid.UUID
}
