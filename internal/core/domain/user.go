package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer      Role = "customer"
	RoleCashier       Role = "cashier"
	RoleAdministrator Role = "administrator"
	RoleDeliveryAgent Role = "delivery-agent"
)

// ParseRole rejects anything outside the closed set.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleCashier, RoleAdministrator, RoleDeliveryAgent:
		return r, nil
	}
	return "", fmt.Errorf("%w: role must be one of: customer cashier administrator delivery-agent", ErrValidation)
}

// User models an account. Secrets never leave the process through JSON.
type User struct {
	ID                string       `json:"id" bson:"_id"`
	Name              string       `json:"name" bson:"name"`
	Username          string       `json:"username" bson:"username"`
	Email             string       `json:"email" bson:"email"`
	Phone             string       `json:"phone,omitempty" bson:"phone,omitempty"`
	Address           string       `json:"address,omitempty" bson:"address,omitempty"`
	DocumentType      string       `json:"document_type,omitempty" bson:"document_type,omitempty"`
	DocumentNumber    string       `json:"document_number,omitempty" bson:"document_number,omitempty"`
	Status            RecordStatus `json:"status" bson:"status"`
	Role              Role         `json:"role" bson:"role"`
	PasswordHash      string       `json:"-" bson:"password_hash"`
	RecoveryCodeHash  string       `json:"-" bson:"recovery_code_hash,omitempty"`
	RecoveryExpiresAt *time.Time   `json:"-" bson:"recovery_expires_at,omitempty"`
	RecoveryAttempts  int          `json:"-" bson:"recovery_attempts,omitempty"`
	CreatedAt         time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" bson:"updated_at"`
}
