package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleMedical   Role = "medical"
	RoleCaretaker Role = "caretaker"
	RolePatient   Role = "patient"
)

// Availability enum for care providers
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOffline   Availability = "offline"
)

// DefaultMaxPatients is the capacity assumed for a provider that
// never configured one.
const DefaultMaxPatients = 50

// User represents a user in the system. Doctors (role medical) and
// caretakers carry provider attributes; a patient's clinical state
// lives in PatientProfile.
type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName    string     `gorm:"size:100" json:"firstName"`
	LastName     string     `gorm:"size:100" json:"lastName"`
	Role         Role       `gorm:"size:20;default:'patient'" json:"role"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber  string     `json:"phoneNumber,omitempty"`
	ProfileImage string     `json:"profileImage,omitempty"`

	// Provider attributes (role medical or caretaker). Specialization
	// applies to doctors, certification to caretakers.
	Availability    Availability `gorm:"size:20;default:'available'" json:"availability,omitempty"`
	Specialization  string       `gorm:"size:100" json:"specialization,omitempty"`
	YearsInPractice int          `gorm:"default:0" json:"yearsInPractice,omitempty"`
	Certified       bool         `gorm:"default:false" json:"certified,omitempty"`
	ExperienceYears int          `gorm:"default:0" json:"experienceYears,omitempty"`
	MaxPatients     int          `gorm:"default:50" json:"maxPatients,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken  `gorm:"foreignKey:UserID" json:"-"`
	Profile       *PatientProfile `gorm:"foreignKey:UserID" json:"-"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsProvider reports whether the user can be part of a care team.
func (u *User) IsProvider() bool {
	return u.Role == RoleMedical || u.Role == RoleCaretaker
}

// EffectiveMaxPatients returns the configured capacity, falling back
// to the system default when unset.
func (u *User) EffectiveMaxPatients() int {
	if u.MaxPatients <= 0 {
		return DefaultMaxPatients
	}
	return u.MaxPatients
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	FirstName       string       `json:"firstName"`
	LastName        string       `json:"lastName"`
	Role            Role         `json:"role"`
	DateOfBirth     *time.Time   `json:"dateOfBirth,omitempty"`
	PhoneNumber     string       `json:"phoneNumber,omitempty"`
	ProfileImage    string       `json:"profileImage,omitempty"`
	Availability    Availability `json:"availability,omitempty"`
	Specialization  string       `json:"specialization,omitempty"`
	YearsInPractice int          `json:"yearsInPractice,omitempty"`
	Certified       bool         `json:"certified,omitempty"`
	ExperienceYears int          `json:"experienceYears,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		DateOfBirth:     u.DateOfBirth,
		PhoneNumber:     u.PhoneNumber,
		ProfileImage:    u.ProfileImage,
		Availability:    u.Availability,
		Specialization:  u.Specialization,
		YearsInPractice: u.YearsInPractice,
		Certified:       u.Certified,
		ExperienceYears: u.ExperienceYears,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
