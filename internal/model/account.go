package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is a registered user stored in the "users" collection.
// Email is normalized (trimmed, lowercased) before storage and is
// immutable after creation; a unique index enforces one account per email.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}

// PublicAccount is the view of an account that leaves the auth service.
// The password hash never appears here.
type PublicAccount struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:      a.ID.Hex(),
		Name:    a.Name,
		Email:   a.Email,
		IsAdmin: a.IsAdmin,
	}
}

type CreateAccountParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// RegisterRequest is the JSON body for POST /api/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/login. Remember selects the
// long-lived token expiry class.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}
