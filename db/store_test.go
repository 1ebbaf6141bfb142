package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prem22k/c3-backend/applications/recruitment"
	"github.com/prem22k/c3-backend/applications/registration"
	"github.com/prem22k/c3-backend/config"
)

func newMember(email, mobile string, at time.Time) *registration.Member {
	return &registration.Member{
		Name:           "Asha",
		Email:          email,
		Mobile:         mobile,
		RollNumber:     "21B81A0501",
		Department:     "CSE",
		Year:           "3",
		Interests:      []string{"cloud", "devops"},
		RegistrationID: "C3-123456",
		CreatedAt:      at,
		UpdatedAt:      at,
	}
}

// runStoreContract exercises the behaviour every Store backend must share.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	email := "asha-" + suffix + "@example.com"
	mobile := "9" + suffix[len(suffix)-9:]
	created := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("member upsert is keyed by email", func(t *testing.T) {
		first, err := s.UpsertMember(ctx, newMember(email, mobile, created))
		require.NoError(t, err)
		assert.NotEmpty(t, first.ID)
		assert.False(t, first.EmailSent)

		later := created.Add(time.Minute)
		retry := newMember(email, mobile, later)
		retry.Name = "Asha K"
		retry.RegistrationID = "C3-654321"
		second, err := s.UpsertMember(ctx, retry)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "C3-123456", second.RegistrationID, "registration ID is written on insert only")
		assert.Equal(t, "Asha K", second.Name)
		assert.WithinDuration(t, created, second.CreatedAt, time.Second)
		assert.WithinDuration(t, later, second.UpdatedAt, time.Second)
		assert.Equal(t, []string{"cloud", "devops"}, second.Interests)
	})

	t.Run("lookups", func(t *testing.T) {
		m, err := s.FindMemberByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, mobile, m.Mobile)

		m, err = s.FindMemberByMobile(ctx, mobile)
		require.NoError(t, err)
		assert.Equal(t, email, m.Email)

		_, err = s.FindMemberByEmail(ctx, "missing-"+suffix+"@example.com")
		assert.ErrorIs(t, err, registration.ErrNotFound)
	})

	t.Run("mark email sent", func(t *testing.T) {
		at := created.Add(2 * time.Minute)
		require.NoError(t, s.MarkEmailSent(ctx, email, at))

		m, err := s.FindMemberByEmail(ctx, email)
		require.NoError(t, err)
		assert.True(t, m.EmailSent)
		require.NotNil(t, m.EmailSentAt)
		assert.WithinDuration(t, at, *m.EmailSentAt, time.Second)

		assert.ErrorIs(t, s.MarkEmailSent(ctx, "missing-"+suffix+"@example.com", at), registration.ErrNotFound)
	})

	t.Run("list members", func(t *testing.T) {
		members, err := s.ListMembers(ctx)
		require.NoError(t, err)
		count := 0
		for _, m := range members {
			if m.Email == email {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("candidate upsert keeps insert-only fields", func(t *testing.T) {
		cEmail := "cand-" + suffix + "@sreenidhi.edu.in"
		c := &recruitment.Candidate{
			Name:            "Ravi",
			Email:           cEmail,
			Mobile:          mobile,
			PassingOutYear:  "2027",
			ProblemUnlocked: "p1",
			Source:          recruitment.SourceRecruitmentPage,
			CreatedAt:       created,
			UpdatedAt:       created,
		}
		first, err := s.UpsertCandidate(ctx, c)
		require.NoError(t, err)
		assert.False(t, first.SubmittedSolution)

		c2 := *c
		c2.ProblemUnlocked = "p2"
		c2.CreatedAt = created.Add(time.Hour)
		c2.UpdatedAt = created.Add(time.Hour)
		second, err := s.UpsertCandidate(ctx, &c2)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "p2", second.ProblemUnlocked)
		assert.WithinDuration(t, created, second.CreatedAt, time.Second)

		c3 := *c
		c3.ProblemUnlocked = ""
		c3.UpdatedAt = created.Add(2 * time.Hour)
		third, err := s.UpsertCandidate(ctx, &c3)
		require.NoError(t, err)
		assert.Equal(t, "p2", third.ProblemUnlocked)

		found, err := s.FindCandidateByEmail(ctx, cEmail)
		require.NoError(t, err)
		assert.Equal(t, "p2", found.ProblemUnlocked)

		list, err := s.ListCandidates(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, list)

		_, err = s.FindCandidateByEmail(ctx, "nobody-"+suffix+"@sreenidhi.edu.in")
		assert.ErrorIs(t, err, recruitment.ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	saved, err := s.UpsertMember(ctx, newMember("a@example.com", "1", time.Now()))
	require.NoError(t, err)
	saved.Interests[0] = "changed"

	m, err := s.FindMemberByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cloud", m.Interests[0])
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	s, err := ConnectMongo(ctx, uri, "c3_test")
	require.NoError(t, err)
	defer s.Close(ctx)

	runStoreContract(t, s)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL not set")
	}
	conn, err := Open(url)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(conn))

	s := NewPostgresStore(conn)
	defer s.Close(context.Background())

	runStoreContract(t, s)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(context.Background(), config.Config{StoreDriver: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = NewStore(context.Background(), config.Config{StoreDriver: "sqlite"})
	assert.Error(t, err)
}
