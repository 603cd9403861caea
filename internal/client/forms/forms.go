// Package forms holds the client-side schemas mutations are validated
// against before any request is issued. A schema failure never reaches the
// wire; it surfaces as field-level errors for inline display.
package forms

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrInvalid = errors.New("form validation failed")

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError names one rejected field for inline messaging.
type FieldError struct {
	Field string
	Rule  string
}

// Error wraps the rejected fields of one form submission.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %d field(s) rejected", ErrInvalid, len(e.Fields))
}

func (e *Error) Unwrap() error { return ErrInvalid }

// Validate checks v against its schema tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// Login is the signin form, shared by both account kinds.
type Login struct {
	Login    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// MemberSignup registers a member account. ProfilePicture is optional; the
// encoder still submits the field as an empty file placeholder when absent.
type MemberSignup struct {
	FirstName      string `validate:"required"`
	LastName       string `validate:"required"`
	Email          string `validate:"required,email"`
	Password       string `validate:"required,min=6"`
	Bio            string
	ProfilePicture []byte
	PictureName    string
}

// OrganizationSignup registers an organization account.
type OrganizationSignup struct {
	Name        string `validate:"required"`
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=6"`
	Category    string `validate:"required"`
	Description string
	Logo        []byte
	LogoName    string
}

// OTPCode is the six-digit authenticator code.
type OTPCode struct {
	Code string `validate:"required,len=6,numeric"`
}

// BackupCode is the fallback recovery code.
type BackupCode struct {
	Code string `validate:"required,len=10,alphanum"`
}

// Comment targets exactly one of a post or an event.
type Comment struct {
	Message string `validate:"required"`
	PostID  int64
	EventID int64
}

// Validate enforces the mutually exclusive foreign key on top of the tags.
func (c Comment) Validate() error {
	if err := Validate(c); err != nil {
		return err
	}
	if (c.PostID == 0) == (c.EventID == 0) {
		return &Error{Fields: []FieldError{{Field: "PostID", Rule: "one_of_post_event"}}}
	}
	return nil
}

// Post is the create/update post form.
type Post struct {
	Description string `validate:"required"`
	Image       []byte
	ImageName   string
}

// Event is the create/update event form.
type Event struct {
	Title       string    `validate:"required"`
	Description string    `validate:"required"`
	EventDate   time.Time `validate:"required"`
	Address     EventAddress
	Image       []byte
	ImageName   string
}

// EventAddress is the structured location block of the event form.
type EventAddress struct {
	Country             string `validate:"required"`
	Province            string `validate:"required"`
	City                string `validate:"required"`
	Barangay            string
	HouseBuildingNumber string
	CountryCode         string
	ProvinceCode        string
	CityCode            string
	BarangayCode        string
}
