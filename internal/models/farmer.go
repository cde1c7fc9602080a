package models

import (
	"time"
)

// Verification status values for a farmer.
const (
	VerificationPending       = "pending"
	VerificationPhoneVerified = "phone_verified"
)

// MaxOTPAttempts bounds how many times a single OTP row may be tried.
const MaxOTPAttempts = 3

// Farmer represents a registered platform member.
type Farmer struct {
	BaseModel
	PhoneNumber         string  `gorm:"uniqueIndex;not null" json:"phone_number"`
	Email               *string `json:"email,omitempty"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	RegistrationChannel string  `json:"registration_channel"`
	VerificationStatus  string  `gorm:"default:pending" json:"verification_status"`
	ProfileCompleted    bool    `json:"profile_completed"`
	Farms               []Farm  `json:"farms,omitempty"`
}

// PhoneVerification keeps track of OTP codes sent to farmers. Rows are
// history; only the most recent row per phone number is consulted.
type PhoneVerification struct {
	CreatedOnlyModel
	PhoneNumber string    `gorm:"index" json:"phone_number"`
	OTPCode     string    `json:"otp_code"`
	ExpiresAt   time.Time `json:"expires_at"`
	Verified    bool      `json:"verified"`
	Attempts    int       `json:"attempts"`
}

// Usable reports whether the code may still be consumed at the given time.
func (v *PhoneVerification) Usable(now time.Time) bool {
	return !v.Verified && v.Attempts < MaxOTPAttempts && now.Before(v.ExpiresAt)
}

// FarmerSummary is the public projection returned after registration or login.
type FarmerSummary struct {
	ID                 string  `json:"id"`
	PhoneNumber        string  `json:"phone_number"`
	Email              *string `json:"email,omitempty"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	VerificationStatus string  `json:"verification_status"`
	ProfileCompleted   bool    `json:"profile_completed"`
}

// Summary builds the public projection of a farmer.
func (f *Farmer) Summary() FarmerSummary {
	return FarmerSummary{
		ID:                 f.ID.String(),
		PhoneNumber:        f.PhoneNumber,
		Email:              f.Email,
		FirstName:          f.FirstName,
		LastName:           f.LastName,
		VerificationStatus: f.VerificationStatus,
		ProfileCompleted:   f.ProfileCompleted,
	}
}

// DisplayName returns the farmer's name used in session greetings.
func (f *Farmer) DisplayName() string {
	if f.LastName == "" {
		return f.FirstName
	}
	return f.FirstName + " " + f.LastName
}
