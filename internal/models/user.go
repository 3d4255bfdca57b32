package models

import (
	"gorm.io/gorm"
)

// Role represents what a user is allowed to do on the marketplace
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// User represents a marketplace account (buyer, seller, or back-office admin)
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null;default:'buyer'"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
