package models

import "time"

// User is an admin-panel account. Email is the identity.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"-"`
	Email        string    `bson:"email" json:"email"`
	FirstName    string    `bson:"firstName" json:"firstName"`
	LastName     string    `bson:"lastName" json:"lastName"`
	Admin        bool      `bson:"admin" json:"admin"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
