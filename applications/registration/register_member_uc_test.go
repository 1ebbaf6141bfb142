package registration_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prem22k/c3-backend/applications/card"
	"github.com/prem22k/c3-backend/applications/email"
	"github.com/prem22k/c3-backend/applications/registration"
	"github.com/prem22k/c3-backend/applications/validation"
	"github.com/prem22k/c3-backend/db"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSender struct {
	mu       sync.Mutex
	err      error
	sent     []email.Message
	attached []bool
}

func (f *fakeSender) Name() string { return "fake" }
func (f *fakeSender) Verify(context.Context) error { return nil }

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	exists := false
	for _, a := range msg.Attachments {
		if _, err := os.Stat(a.Path); err == nil {
			exists = true
		}
	}
	f.attached = append(f.attached, exists)
	return f.err
}

type fakeCards struct {
	dir     string
	err     error
	written []string
}

func (f *fakeCards) Render(d card.Data) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-" + d.RegistrationID), nil
}

func (f *fakeCards) WriteTemp(d card.Data) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	p := filepath.Join(f.dir, d.RegistrationID+".pdf")
	if err := os.WriteFile(p, []byte("%PDF-"), 0o600); err != nil {
		return "", err
	}
	f.written = append(f.written, p)
	return p, nil
}

const validPayload = `{
	"name": "Asha",
	"email": "  Asha@Example.com ",
	"mobile": "9876543210",
	"rollNumber": "21B81A0501",
	"department": "CSE",
	"year": "3",
	"interests": ["cloud", "devops"]
}`

func setup(t *testing.T, strict bool) (*registration.RegisterMemberUC, *db.MemoryStore, *fakeSender, *fakeCards) {
	t.Helper()
	store := db.NewMemoryStore()
	sender := &fakeSender{}
	cards := &fakeCards{dir: t.TempDir()}
	return registration.NewRegisterMemberUC(quietLog, store, sender, cards, strict), store, sender, cards
}

func TestRegisterMember_Success(t *testing.T) {
	uc, store, sender, cards := setup(t, false)

	res, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)

	assert.Equal(t, registration.StatusSuccess, res.Status)
	assert.True(t, res.EmailSent)
	assert.Equal(t, "asha@example.com", res.Member.Email)
	assert.Regexp(t, `^C3-[1-9]\d{5}$`, res.Member.RegistrationID)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "asha@example.com", sender.sent[0].To)
	require.Len(t, sender.sent[0].Attachments, 1)
	assert.True(t, sender.attached[0], "card must exist while sending")

	require.Len(t, cards.written, 1)
	_, statErr := os.Stat(cards.written[0])
	assert.True(t, os.IsNotExist(statErr), "temp card must be removed after sending")

	stored, err := store.FindMemberByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailSent)
	assert.NotNil(t, stored.EmailSentAt)
}

func TestRegisterMember_ValidationErrors(t *testing.T) {
	uc, _, sender, _ := setup(t, false)

	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"empty body", `{}`, "name"},
		{"missing email", `{"name":"A","mobile":"1","rollNumber":"r","department":"d","year":"1","interests":["x"]}`, "email"},
		{"bad email", `{"name":"A","email":"nope","mobile":"1","rollNumber":"r","department":"d","year":"1","interests":["x"]}`, "email"},
		{"no interests", `{"name":"A","email":"a@b.co","mobile":"1","rollNumber":"r","department":"d","year":"1","interests":[]}`, "interests"},
		{"blank name", `{"name":"   ","email":"a@b.co","mobile":"1","rollNumber":"r","department":"d","year":"1","interests":["x"]}`, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Invoke(context.Background(), []byte(tt.payload))
			var fe *validation.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
	assert.Empty(t, sender.sent)
}

func TestRegisterMember_InvalidJSON(t *testing.T) {
	uc, _, _, _ := setup(t, false)

	_, err := uc.Invoke(context.Background(), []byte(`{"name":`))
	assert.ErrorIs(t, err, registration.ErrInvalidPayload)
}

func TestRegisterMember_EmailFailureIsPartialSuccess(t *testing.T) {
	uc, store, sender, _ := setup(t, false)
	sender.err = errors.New("smtp down")

	res, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPartialSuccess, res.Status)
	assert.False(t, res.EmailSent)
	assert.NotEmpty(t, res.Warning)

	stored, err := store.FindMemberByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.False(t, stored.EmailSent)
}

func TestRegisterMember_StrictEmailFailure(t *testing.T) {
	uc, store, sender, _ := setup(t, true)
	sender.err = errors.New("smtp down")

	_, err := uc.Invoke(context.Background(), []byte(validPayload))
	assert.ErrorIs(t, err, registration.ErrEmailDelivery)

	_, err = store.FindMemberByEmail(context.Background(), "asha@example.com")
	assert.NoError(t, err, "record stays stored for a retry")
}

func TestRegisterMember_RetryAfterFailedEmailReusesRecord(t *testing.T) {
	uc, store, sender, _ := setup(t, false)
	sender.err = errors.New("smtp down")

	first, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)

	sender.err = nil
	second, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)

	assert.Equal(t, registration.StatusSuccess, second.Status)
	assert.Equal(t, first.Member.RegistrationID, second.Member.RegistrationID)
	assert.Equal(t, first.Member.ID, second.Member.ID)

	members, err := store.ListMembers(context.Background())
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Len(t, sender.sent, 2)
}

func TestRegisterMember_AlreadyRegistered(t *testing.T) {
	uc, store, sender, _ := setup(t, false)

	first, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)

	_, err = uc.Invoke(context.Background(), []byte(validPayload))
	var already *registration.AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, first.Member.RegistrationID, already.RegistrationID)

	members, err := store.ListMembers(context.Background())
	require.NoError(t, err)
	assert.Len(t, members, 1)
	assert.Len(t, sender.sent, 1)
}

func TestRegisterMember_MobileOwnedByAnotherEmail(t *testing.T) {
	uc, _, _, _ := setup(t, false)

	_, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)

	other := `{"name":"B","email":"b@example.com","mobile":"9876543210","rollNumber":"r","department":"d","year":"1","interests":["x"]}`
	_, err = uc.Invoke(context.Background(), []byte(other))
	assert.ErrorIs(t, err, registration.ErrMobileTaken)
}

func TestRegisterMember_CardFailureStillSendsEmail(t *testing.T) {
	uc, _, sender, cards := setup(t, false)
	cards.err = card.ErrCardGeneration

	res, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)
	assert.Equal(t, registration.StatusSuccess, res.Status)

	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].Attachments)
}

func TestListAndRenderMember(t *testing.T) {
	uc, store, _, cards := setup(t, false)
	res, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)

	members, err := registration.NewListMembersUC(quietLog, store).Invoke(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)

	pdf, m, err := registration.NewRenderMemberCardUC(quietLog, store, cards).Invoke(context.Background(), " ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.Member.RegistrationID, m.RegistrationID)
	assert.Contains(t, string(pdf), res.Member.RegistrationID)

	_, _, err = registration.NewRenderMemberCardUC(quietLog, store, cards).Invoke(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, registration.ErrNotFound)
}

// blindStore hides existing members from the email lookup, as happens when two
// first-time submissions race past the existence check.
type blindStore struct {
	*db.MemoryStore
}

func (blindStore) FindMemberByEmail(context.Context, string) (*registration.Member, error) {
	return nil, registration.ErrNotFound
}

func TestRegisterMember_ConcurrentFirstSubmissionsShareOneID(t *testing.T) {
	store := db.NewMemoryStore()
	sender := &fakeSender{}
	uc := registration.NewRegisterMemberUC(quietLog, blindStore{store}, sender, &fakeCards{dir: t.TempDir()}, false)

	first, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)
	second, err := uc.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)

	stored, err := store.FindMemberByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)

	assert.Equal(t, stored.RegistrationID, first.Member.RegistrationID)
	assert.Equal(t, stored.RegistrationID, second.Member.RegistrationID)
	require.Len(t, sender.sent, 2)
	for _, msg := range sender.sent {
		assert.Contains(t, msg.Subject, stored.RegistrationID)
	}
}

func TestRegisterMember_LogTransportLeavesMemberUnconfirmed(t *testing.T) {
	store := db.NewMemoryStore()
	cards := &fakeCards{dir: t.TempDir()}

	logOnly := registration.NewRegisterMemberUC(quietLog, store, email.LogSender{}, cards, false)
	res, err := logOnly.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)
	assert.Equal(t, registration.StatusPartialSuccess, res.Status)
	assert.False(t, res.EmailSent)

	stored, err := store.FindMemberByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.False(t, stored.EmailSent)

	sender := &fakeSender{}
	mailing := registration.NewRegisterMemberUC(quietLog, store, sender, cards, false)
	retry, err := mailing.Invoke(context.Background(), []byte(validPayload))
	require.NoError(t, err)
	assert.Equal(t, registration.StatusSuccess, retry.Status)
	assert.Equal(t, res.Member.RegistrationID, retry.Member.RegistrationID)
	assert.Len(t, sender.sent, 1)
}
