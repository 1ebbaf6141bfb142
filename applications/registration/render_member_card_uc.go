package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// RenderMemberCardUC regenerates the card of an existing member in memory.
type RenderMemberCardUC struct {
	log   *slog.Logger
	store Store
	cards CardRenderer
}

func NewRenderMemberCardUC(log *slog.Logger, store Store, cards CardRenderer) *RenderMemberCardUC {
	return &RenderMemberCardUC{log: log, store: store, cards: cards}
}

func (uc *RenderMemberCardUC) Invoke(ctx context.Context, email string) ([]byte, *Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	m, err := uc.store.FindMemberByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	pdfBytes, err := uc.cards.Render(cardData(m))
	if err != nil {
		uc.log.Error(fmt.Sprintf("[render-member-card-uc] Card generation failed for %s: %v", email, err))
		return nil, nil, err
	}
	return pdfBytes, m, nil
}
