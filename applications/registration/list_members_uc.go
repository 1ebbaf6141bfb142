package registration

import (
	"context"
	"fmt"
	"log/slog"
)

type ListMembersUC struct {
	log   *slog.Logger
	store Store
}

func NewListMembersUC(log *slog.Logger, store Store) *ListMembersUC {
	return &ListMembersUC{log: log, store: store}
}

func (uc *ListMembersUC) Invoke(ctx context.Context) ([]*Member, error) {
	members, err := uc.store.ListMembers(ctx)
	if err != nil {
		uc.log.Error(fmt.Sprintf("[list-members-uc] Listing failed: %v", err))
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	uc.log.Info(fmt.Sprintf("[list-members-uc] Retrieved %d registrations.", len(members)))
	return members, nil
}
