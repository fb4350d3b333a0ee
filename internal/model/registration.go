package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "pending"
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
	RegistrationStatusCancelled RegistrationStatus = "cancelled"
)

// PersonalInfo identifies the person signing up for an event. It is
// self-contained: registrations carry no reference to an Account.
type PersonalInfo struct {
	Name  string `bson:"name" json:"name" validate:"required"`
	Email string `bson:"email" json:"email" validate:"required,email"`
	Phone string `bson:"phone" json:"phone" validate:"required"`
}

// Team is optional extra detail for team events.
type Team struct {
	Name    string   `bson:"name,omitempty" json:"name,omitempty"`
	Members []string `bson:"members,omitempty" json:"members,omitempty"`
}

// Registration is one event signup stored in the "registrations" collection.
// It is written once and never mutated; status transitions have no endpoint.
type Registration struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PersonalInfo  PersonalInfo       `bson:"personalInfo" json:"personalInfo"`
	EventCategory string             `bson:"eventCategory" json:"eventCategory"`
	Event         string             `bson:"event" json:"event"`
	Team          *Team              `bson:"team,omitempty" json:"team,omitempty"`
	Status        RegistrationStatus `bson:"status" json:"status"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
}

// SubmitRegistrationParams is the JSON body for POST /api/register-event.
// Validation tags mark the mandatory fields; a failed validation stores
// nothing.
type SubmitRegistrationParams struct {
	PersonalInfo  PersonalInfo `json:"personalInfo"`
	EventCategory string       `json:"eventCategory" validate:"required"`
	Event         string       `json:"event" validate:"required"`
	Team          *Team        `json:"team,omitempty"`
}
