package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prem22k/c3-backend/applications/card"
	"github.com/prem22k/c3-backend/applications/email"
	"github.com/prem22k/c3-backend/applications/validation"
)

// RegisterParams is the join-us form payload.
type RegisterParams struct {
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	Mobile       string   `json:"mobile" validate:"required"`
	RollNumber   string   `json:"rollNumber" validate:"required"`
	Department   string   `json:"department" validate:"required"`
	Year         string   `json:"year" validate:"required"`
	Interests    []string `json:"interests" validate:"required,min=1,dive,required"`
	Experience   string   `json:"experience,omitempty"`
	Expectations string   `json:"expectations,omitempty"`
	Referral     string   `json:"referral,omitempty"`
}

func (p *RegisterParams) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Mobile = strings.TrimSpace(p.Mobile)
	p.RollNumber = strings.TrimSpace(p.RollNumber)
	p.Department = strings.TrimSpace(p.Department)
	p.Year = strings.TrimSpace(p.Year)
	p.Experience = strings.TrimSpace(p.Experience)
	p.Expectations = strings.TrimSpace(p.Expectations)
	p.Referral = strings.TrimSpace(p.Referral)

	interests := make([]string, 0, len(p.Interests))
	for _, i := range p.Interests {
		interests = append(interests, strings.TrimSpace(i))
	}
	if p.Interests != nil {
		p.Interests = interests
	}
}

// CardRenderer produces membership cards.
type CardRenderer interface {
	Render(d card.Data) ([]byte, error)
	WriteTemp(d card.Data) (string, error)
}

type RegisterMemberUC struct {
	log    *slog.Logger
	store  Store
	sender email.Sender
	cards  CardRenderer
	strict bool
	now    func() time.Time
}

// NewRegisterMemberUC wires the registration flow. With strict set, a failed
// confirmation email is reported as ErrEmailDelivery instead of a partial success.
func NewRegisterMemberUC(log *slog.Logger, store Store, sender email.Sender, cards CardRenderer, strict bool) *RegisterMemberUC {
	return &RegisterMemberUC{
		log:    log,
		store:  store,
		sender: sender,
		cards:  cards,
		strict: strict,
		now:    time.Now,
	}
}

// Invoke validates the form, upserts the member by email, and sends the
// confirmation mail with the membership card attached.
func (uc *RegisterMemberUC) Invoke(ctx context.Context, payload []byte) (*Result, error) {
	var p RegisterParams
	if err := json.Unmarshal(payload, &p); err != nil {
		uc.log.Warn(fmt.Sprintf("[register-member-uc] Unmarshal failed: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p.normalize()

	if err := validation.Struct(&p); err != nil {
		uc.log.Warn(fmt.Sprintf("[register-member-uc] Validation failed: %v", err))
		return nil, err
	}

	uc.log.Info(fmt.Sprintf("[register-member-uc] Registration started for %s", p.Email))

	// 1. Existing record by email
	existing, err := uc.store.FindMemberByEmail(ctx, p.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		uc.log.Error(fmt.Sprintf("[register-member-uc] Lookup by email failed for %s: %v", p.Email, err))
		return nil, fmt.Errorf("lookup by email: %w", err)
	}
	if existing != nil && existing.EmailSent {
		uc.log.Info(fmt.Sprintf("[register-member-uc] %s already registered as %s", p.Email, existing.RegistrationID))
		return nil, &AlreadyRegisteredError{RegistrationID: existing.RegistrationID}
	}

	// 2. Mobile must not belong to another email
	byMobile, err := uc.store.FindMemberByMobile(ctx, p.Mobile)
	if err != nil && !errors.Is(err, ErrNotFound) {
		uc.log.Error(fmt.Sprintf("[register-member-uc] Lookup by mobile failed for %s: %v", p.Email, err))
		return nil, fmt.Errorf("lookup by mobile: %w", err)
	}
	if byMobile != nil && byMobile.Email != p.Email {
		uc.log.Warn(fmt.Sprintf("[register-member-uc] Mobile for %s already used by another registration", p.Email))
		return nil, ErrMobileTaken
	}

	// 3. Upsert, keeping the registration ID of a previous attempt
	regID := ""
	if existing != nil {
		regID = existing.RegistrationID
		uc.log.Info(fmt.Sprintf("[register-member-uc] Retrying unconfirmed registration %s for %s", regID, p.Email))
	}
	if regID == "" {
		if regID, err = GenerateRegistrationID(); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	m := &Member{
		Name:           p.Name,
		Email:          p.Email,
		Mobile:         p.Mobile,
		RollNumber:     p.RollNumber,
		Department:     p.Department,
		Year:           p.Year,
		Interests:      p.Interests,
		Experience:     p.Experience,
		Expectations:   p.Expectations,
		Referral:       p.Referral,
		RegistrationID: regID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	saved, err := uc.store.UpsertMember(ctx, m)
	if err != nil {
		uc.log.Error(fmt.Sprintf("[register-member-uc] Upsert failed for %s: %v", p.Email, err))
		return nil, fmt.Errorf("save registration: %w", err)
	}
	uc.log.Info(fmt.Sprintf("[register-member-uc] ✅ Registration %s saved for %s", saved.RegistrationID, saved.Email))

	// 4. Card + confirmation email, best effort unless strict
	sendErr := uc.sendConfirmation(ctx, saved)
	if sendErr != nil {
		uc.log.Warn(fmt.Sprintf("[register-member-uc] ⚠️ Confirmation email failed for %s: %v", saved.Email, sendErr))
		if uc.strict {
			return nil, fmt.Errorf("%w: %v", ErrEmailDelivery, sendErr)
		}
		return &Result{
			Member:  saved,
			Status:  StatusPartialSuccess,
			Warning: "Registration saved but the confirmation email could not be sent.",
		}, nil
	}

	// A log-only transport never reaches the member; keep emailSent false so a
	// later retry on a real transport mails the card.
	if !email.Delivers(uc.sender) {
		uc.log.Warn(fmt.Sprintf("[register-member-uc] ⚠️ Transport %s does not deliver mail; %s stays unconfirmed", uc.sender.Name(), saved.Email))
		return &Result{
			Member:  saved,
			Status:  StatusPartialSuccess,
			Warning: "Registration saved but email delivery is disabled on this server.",
		}, nil
	}

	sentAt := uc.now()
	if err := uc.store.MarkEmailSent(ctx, saved.Email, sentAt); err != nil {
		uc.log.Error(fmt.Sprintf("[register-member-uc] Failed to record email status for %s: %v", saved.Email, err))
	} else {
		saved.EmailSent = true
		saved.EmailSentAt = &sentAt
	}

	return &Result{Member: saved, Status: StatusSuccess, EmailSent: true}, nil
}

func (uc *RegisterMemberUC) sendConfirmation(ctx context.Context, m *Member) error {
	cardPath, err := uc.cards.WriteTemp(cardData(m))
	if err != nil {
		uc.log.Warn(fmt.Sprintf("[register-member-uc] ⚠️ Card generation failed for %s: %v", m.Email, err))
		cardPath = ""
	} else {
		defer func() {
			if err := os.Remove(cardPath); err != nil {
				uc.log.Warn(fmt.Sprintf("[register-member-uc] Could not remove temp card %s: %v", cardPath, err))
			}
		}()
	}

	msg := email.ConfirmationMessage(m.Email, m.Name, m.RegistrationID, m.Interests, cardPath)
	return uc.sender.Send(ctx, msg)
}

func cardData(m *Member) card.Data {
	return card.Data{
		Name:           m.Name,
		RegistrationID: m.RegistrationID,
		Email:          m.Email,
		Department:     m.Department,
		Year:           m.Year,
	}
}
