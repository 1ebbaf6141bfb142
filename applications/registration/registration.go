package registration

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound       = errors.New("registration not found")
	ErrInvalidPayload = errors.New("invalid registration payload")
	ErrMobileTaken    = errors.New("mobile number already registered")
	ErrEmailDelivery  = errors.New("registration saved but confirmation email failed")
)

// AlreadyRegisteredError is returned when the email has a confirmed registration.
type AlreadyRegisteredError struct {
	RegistrationID string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("email already registered (%s)", e.RegistrationID)
}

// Member is a club registration, keyed by email.
type Member struct {
	ID             string     `json:"id,omitempty" bson:"-"`
	Name           string     `json:"name" bson:"name"`
	Email          string     `json:"email" bson:"email"`
	Mobile         string     `json:"mobile" bson:"mobile"`
	RollNumber     string     `json:"rollNumber" bson:"rollNumber"`
	Department     string     `json:"department" bson:"department"`
	Year           string     `json:"year" bson:"year"`
	Interests      []string   `json:"interests" bson:"interests"`
	Experience     string     `json:"experience,omitempty" bson:"experience,omitempty"`
	Expectations   string     `json:"expectations,omitempty" bson:"expectations,omitempty"`
	Referral       string     `json:"referral,omitempty" bson:"referral,omitempty"`
	RegistrationID string     `json:"registrationID" bson:"registrationID"`
	EmailSent      bool       `json:"emailSent" bson:"emailSent"`
	EmailSentAt    *time.Time `json:"emailSentAt,omitempty" bson:"emailSentAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Store persists members. UpsertMember must be keyed by email so that a retry
// never creates a second record. RegistrationID and CreatedAt are only written
// on insert, so callers must use the returned member's ID.
type Store interface {
	FindMemberByEmail(ctx context.Context, email string) (*Member, error)
	FindMemberByMobile(ctx context.Context, mobile string) (*Member, error)
	UpsertMember(ctx context.Context, m *Member) (*Member, error)
	MarkEmailSent(ctx context.Context, email string, at time.Time) error
	ListMembers(ctx context.Context) ([]*Member, error)
}

// Result statuses.
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
)

type Result struct {
	Member    *Member
	Status    string
	EmailSent bool
	Warning   string
}
