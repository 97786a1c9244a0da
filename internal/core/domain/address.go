package domain

import "time"

// Address is a saved delivery address owned by a user.
type Address struct {
	ID        string    `json:"id" bson:"_id"`
	Address   string    `json:"address" bson:"address"`
	UserID    string    `json:"user_id" bson:"user_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Supplier is a vendor record. It has no link to stock.
type Supplier struct {
	ID             string       `json:"id" bson:"_id"`
	Name           string       `json:"name" bson:"name"`
	ContactName    string       `json:"contact_name,omitempty" bson:"contact_name,omitempty"`
	Email          string       `json:"email,omitempty" bson:"email,omitempty"`
	Phone          string       `json:"phone,omitempty" bson:"phone,omitempty"`
	DocumentNumber string       `json:"document_number,omitempty" bson:"document_number,omitempty"`
	Address        string       `json:"address,omitempty" bson:"address,omitempty"`
	Status         RecordStatus `json:"status" bson:"status"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" bson:"updated_at"`
}
