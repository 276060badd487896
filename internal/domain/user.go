package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RolePro     Role = "pro"     // SweatPro: creates and assigns SweatSheets
	RoleAthlete Role = "athlete" // SweatAthlete: trains against assigned SweatSheets
)

// User represents a user in the system (either a SweatPro or a SweatAthlete).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"` // Should be unique
	Email        string             `bson:"email" json:"email"`       // Should be unique
	FirstName    string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	PhoneNumber  string             `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	AvatarKey    string             `bson:"avatarKey,omitempty" json:"avatarKey,omitempty"` // Object key in file storage
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsPro() bool {
	return u.Role == RolePro
}

func (u *User) IsAthlete() bool {
	return u.Role == RoleAthlete
}

// DisplayName returns "First Last", falling back to the username when the
// profile carries no name.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
