package models

import (
	"gorm.io/gorm"
)

// Role represents the access level of a user
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleSales      Role = "sales"
)

// Elevated reports whether the role may manage goals, strategies and users.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// User represents a user in the system
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null"`
	Email    string `json:"email" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null;default:'sales'"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
