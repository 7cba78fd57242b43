package participant

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
	MaxYear        = 10
)

// Domain errors
var (
	ErrEmptyName    = errors.New("participant name cannot be empty")
	ErrNameTooLong  = errors.New("participant name cannot exceed 100 characters")
	ErrEmptyEmail   = errors.New("participant email cannot be empty")
	ErrInvalidEmail = errors.New("participant email must be valid")
	ErrInvalidYear  = errors.New("participant year must be between 0 and 10")
	ErrEmailTooLong = errors.New("participant email cannot exceed 254 characters")
)

// Participant is a candidate or saved attendee of an event.
// ID is a client-generated UUID until the record is persisted, after which it
// carries the decimal form of the server-assigned integer id.
type Participant struct {
	ID          string    `json:"id"`
	EventID     int64     `json:"eventId,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNo     string    `json:"phoneNo,omitempty"`
	Faculty     string    `json:"faculty,omitempty"`
	Course      string    `json:"course,omitempty"`
	Year        int       `json:"year,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Role        string    `json:"role,omitempty"`
	CheckInCode string    `json:"checkInCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Normalize trims descriptive fields and reduces the phone number to digits.
// POST: PhoneNo contains only ASCII digits
func (p *Participant) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.PhoneNo = DigitsOnly(p.PhoneNo)
	p.Faculty = strings.TrimSpace(p.Faculty)
	p.Course = strings.TrimSpace(p.Course)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Role = strings.TrimSpace(p.Role)
}

// Validate checks the required fields of a Participant.
// PRE: Participant struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name and Email are required; Email must parse as an address
func (p *Participant) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	email := strings.TrimSpace(p.Email)
	if email == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	if p.Year < 0 || p.Year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// PersistedID returns the server-assigned id, or false for staged records.
func (p Participant) PersistedID() (int64, bool) {
	id, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// EmailKey returns the email identity key of the participant.
func (p Participant) EmailKey() string {
	return EmailKey(p.Email)
}

// NamePhoneKey returns the name+phone identity key of the participant.
func (p Participant) NamePhoneKey() string {
	return NamePhoneKey(p.Name, p.PhoneNo)
}

// EmailKey normalizes an email address for duplicate detection.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NamePhoneKey joins a normalized name and the digits of a phone number.
func NamePhoneKey(name, phone string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "_" + DigitsOnly(phone)
}

// DigitsOnly strips every character that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
