package recruitment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prem22k/c3-backend/applications/validation"
)

// UnlockParams is the recruitment unlock form payload.
type UnlockParams struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required"`
	Mobile          string `json:"mobile" validate:"required"`
	PassingOutYear  string `json:"passingOutYear" validate:"required"`
	ProblemUnlocked string `json:"problemUnlocked,omitempty"`
}

type UnlockCandidateUC struct {
	log       *slog.Logger
	store     Store
	allowlist DomainAllowlist
	now       func() time.Time
}

func NewUnlockCandidateUC(log *slog.Logger, store Store, allowlist DomainAllowlist) *UnlockCandidateUC {
	return &UnlockCandidateUC{log: log, store: store, allowlist: allowlist, now: time.Now}
}

func (uc *UnlockCandidateUC) Invoke(ctx context.Context, payload []byte) (*Candidate, error) {
	var p UnlockParams
	if err := json.Unmarshal(payload, &p); err != nil {
		uc.log.Warn(fmt.Sprintf("[unlock-candidate-uc] Unmarshal failed: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Mobile = strings.TrimSpace(p.Mobile)
	p.PassingOutYear = strings.TrimSpace(p.PassingOutYear)
	p.ProblemUnlocked = strings.TrimSpace(p.ProblemUnlocked)

	if err := validation.Struct(&p); err != nil {
		uc.log.Warn(fmt.Sprintf("[unlock-candidate-uc] Validation failed: %v", err))
		return nil, err
	}
	if !ValidEmail(p.Email) {
		return nil, ErrInvalidEmail
	}
	if !uc.allowlist.Allowed(p.Email) {
		uc.log.Warn(fmt.Sprintf("[unlock-candidate-uc] Rejected %s: domain not in allowlist", p.Email))
		return nil, ErrDomainNotAllowed
	}

	now := uc.now()
	c := &Candidate{
		Name:            p.Name,
		Email:           p.Email,
		Mobile:          p.Mobile,
		PassingOutYear:  p.PassingOutYear,
		ProblemUnlocked: p.ProblemUnlocked,
		Source:          SourceRecruitmentPage,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	saved, err := uc.store.UpsertCandidate(ctx, c)
	if err != nil {
		uc.log.Error(fmt.Sprintf("[unlock-candidate-uc] Upsert failed for %s: %v", p.Email, err))
		return nil, fmt.Errorf("save candidate: %w", err)
	}

	uc.log.Info(fmt.Sprintf("[unlock-candidate-uc] ✅ Candidate %s unlocked problem %q", saved.Email, saved.ProblemUnlocked))
	return saved, nil
}
