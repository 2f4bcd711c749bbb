package models

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultAbout is the status line given to contacts created without one.
const DefaultAbout = "Hey there! I am using WhatsApp."

// Contact represents a named entity the user can exchange messages with.
type Contact struct {
	// ID is the unique identifier for the contact (time-ordered UUID).
	// Assigned at creation and never changed.
	ID string `json:"id"`

	// FirstName is required and must be non-empty after trimming.
	FirstName string `json:"firstName"`

	// LastName is optional.
	LastName string `json:"lastName"`

	// About is the free-text status line.
	About string `json:"about"`

	// ProfileImage is a URI of a locally picked image, nil when unset.
	ProfileImage *string `json:"profileImage"`
}

// NewContact builds a contact with a fresh ID and the default About line
// when about is blank. Validation of FirstName is left to the caller.
func NewContact(firstName, lastName, about string, profileImage *string) *Contact {
	if strings.TrimSpace(about) == "" {
		about = DefaultAbout
	}
	return &Contact{
		ID:           NewID(),
		FirstName:    firstName,
		LastName:     lastName,
		About:        about,
		ProfileImage: profileImage,
	}
}

// DisplayName joins first and last name.
func (c Contact) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// NewID returns a unique, time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.New().String()
	}
	return id.String()
}
