package models

import "time"

// UserRole separates customers from back-office operators.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// User represents an account that can place orders.
type User struct {
	ID       uint     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string   `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email    string   `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password string   `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash, never serialized
	Role     UserRole `json:"role" gorm:"type:varchar(16);not null;default:customer"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
