package recruitment

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("candidate not found")
	ErrInvalidPayload   = errors.New("invalid recruitment payload")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrDomainNotAllowed = errors.New("email domain not allowed")
)

// SourceRecruitmentPage tags candidates created through the unlock form.
const SourceRecruitmentPage = "Recruitment Page"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Candidate is a recruitment applicant, keyed by email.
type Candidate struct {
	ID                string    `json:"id,omitempty" bson:"-"`
	Name              string    `json:"name" bson:"name"`
	Email             string    `json:"email" bson:"email"`
	Mobile            string    `json:"mobile" bson:"mobile"`
	PassingOutYear    string    `json:"passingOutYear" bson:"passingOutYear"`
	ProblemUnlocked   string    `json:"problemUnlocked,omitempty" bson:"problemUnlocked,omitempty"`
	SubmittedSolution bool      `json:"submittedSolution" bson:"submittedSolution"`
	Source            string    `json:"source" bson:"source"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Store persists candidates. UpsertCandidate is keyed by email; CreatedAt and
// SubmittedSolution are only written on insert, and an empty ProblemUnlocked
// keeps the stored value.
type Store interface {
	UpsertCandidate(ctx context.Context, c *Candidate) (*Candidate, error)
	FindCandidateByEmail(ctx context.Context, email string) (*Candidate, error)
	ListCandidates(ctx context.Context) ([]*Candidate, error)
}

// DomainAllowlist holds the accepted email domain suffixes.
type DomainAllowlist []string

func NewDomainAllowlist(domains []string) DomainAllowlist {
	out := make(DomainAllowlist, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Allowed reports whether the domain part of email is one of the suffixes or a
// subdomain of one.
func (a DomainAllowlist) Allowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range a {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// ValidEmail checks the basic local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
