package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prem22k/c3-backend/applications/recruitment"
	"github.com/prem22k/c3-backend/applications/registration"
)

// MemoryStore keeps everything in process. Used for local runs and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	members    map[string]*registration.Member
	candidates map[string]*recruitment.Candidate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members:    make(map[string]*registration.Member),
		candidates: make(map[string]*recruitment.Candidate),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }

func copyMember(m *registration.Member) *registration.Member {
	cp := *m
	cp.Interests = append([]string(nil), m.Interests...)
	if m.EmailSentAt != nil {
		at := *m.EmailSentAt
		cp.EmailSentAt = &at
	}
	return &cp
}

func (s *MemoryStore) FindMemberByEmail(_ context.Context, email string) (*registration.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[email]
	if !ok {
		return nil, registration.ErrNotFound
	}
	return copyMember(m), nil
}

func (s *MemoryStore) FindMemberByMobile(_ context.Context, mobile string) (*registration.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if m.Mobile == mobile {
			return copyMember(m), nil
		}
	}
	return nil, registration.ErrNotFound
}

func (s *MemoryStore) UpsertMember(_ context.Context, m *registration.Member) (*registration.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyMember(m)
	if prev, ok := s.members[m.Email]; ok {
		next.ID = prev.ID
		next.RegistrationID = prev.RegistrationID
		next.CreatedAt = prev.CreatedAt
		next.EmailSent = prev.EmailSent
		next.EmailSentAt = prev.EmailSentAt
	} else {
		next.ID = uuid.NewString()
		next.EmailSent = false
		next.EmailSentAt = nil
	}
	s.members[m.Email] = next
	return copyMember(next), nil
}

func (s *MemoryStore) MarkEmailSent(_ context.Context, email string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[email]
	if !ok {
		return registration.ErrNotFound
	}
	m.EmailSent = true
	m.EmailSentAt = &at
	m.UpdatedAt = at
	return nil
}

func (s *MemoryStore) ListMembers(context.Context) ([]*registration.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*registration.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, copyMember(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpsertCandidate(_ context.Context, c *recruitment.Candidate) (*recruitment.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *c
	if prev, ok := s.candidates[c.Email]; ok {
		next.ID = prev.ID
		next.CreatedAt = prev.CreatedAt
		next.SubmittedSolution = prev.SubmittedSolution
		if next.ProblemUnlocked == "" {
			next.ProblemUnlocked = prev.ProblemUnlocked
		}
	} else {
		next.ID = uuid.NewString()
		next.SubmittedSolution = false
	}
	s.candidates[c.Email] = &next
	out := next
	return &out, nil
}

func (s *MemoryStore) FindCandidateByEmail(_ context.Context, email string) (*recruitment.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[email]
	if !ok {
		return nil, recruitment.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *MemoryStore) ListCandidates(context.Context) ([]*recruitment.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*recruitment.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
