package recruitment

import (
	"context"
	"fmt"
	"log/slog"
)

type ListCandidatesUC struct {
	log   *slog.Logger
	store Store
}

func NewListCandidatesUC(log *slog.Logger, store Store) *ListCandidatesUC {
	return &ListCandidatesUC{log: log, store: store}
}

func (uc *ListCandidatesUC) Invoke(ctx context.Context) ([]*Candidate, error) {
	candidates, err := uc.store.ListCandidates(ctx)
	if err != nil {
		uc.log.Error(fmt.Sprintf("[list-candidates-uc] Listing failed: %v", err))
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	uc.log.Info(fmt.Sprintf("[list-candidates-uc] Retrieved %d candidates.", len(candidates)))
	return candidates, nil
}
