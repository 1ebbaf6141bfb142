package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prem22k/c3-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeConn struct {
	sent   *bytes.Buffer
	closed bool
}

func (f *fakeConn) Send(from string, to []string, msg io.WriterTo) error {
	_, err := msg.WriteTo(f.sent)
	return err
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func writeAttachment(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "card.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3 fake"), 0o600))
	return path
}

func TestSMTPSenderFallsBackToNextPort(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, []int{465, 587}, "user", "pass", "c3@example.com")
	assert.Equal(t, []int{587, 465}, s.ports)

	var tried []int
	sent := &bytes.Buffer{}
	s.dial = func(d *gomail.Dialer) (gomail.SendCloser, error) {
		tried = append(tried, d.Port)
		if d.Port == 587 {
			return nil, errors.New("connection refused")
		}
		return &fakeConn{sent: sent}, nil
	}

	require.NoError(t, s.Verify(context.Background()))
	assert.Equal(t, []int{587, 465}, tried)
	require.NotNil(t, s.dialer())
	assert.Equal(t, 465, s.dialer().Port)
	assert.True(t, s.dialer().SSL)

	msg := ConfirmationMessage("new@example.com", "New Member", "C3-654321", []string{"Cloud"}, writeAttachment(t))
	require.NoError(t, s.Send(context.Background(), msg))

	out := sent.String()
	assert.Contains(t, out, "Subject: Welcome to C3 [C3-654321]")
	assert.Contains(t, out, "C3-Membership-Card-C3-654321.pdf")
	// Only the verified port is used for sending.
	assert.Equal(t, []int{587, 465, 465}, tried)
}

func TestSMTPSenderAllCandidatesFail(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, []int{465}, "", "", "c3@example.com")
	s.dial = func(d *gomail.Dialer) (gomail.SendCloser, error) {
		return nil, errors.New("timeout")
	}

	err := s.Verify(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDelivery))

	err = s.Send(context.Background(), Message{To: "x@example.com", Subject: "hi", Text: "hi"})
	assert.True(t, errors.Is(err, ErrDelivery))
}

func TestEncodeRawIsBase64URLMime(t *testing.T) {
	raw, err := encodeRaw("c3@example.com", Message{To: "a@example.com", Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: a@example.com")
	assert.Contains(t, string(decoded), "Subject: Hello")
	assert.Contains(t, string(decoded), "text/html")
}

func TestGmailSenderUsesSendFunc(t *testing.T) {
	var got string
	g := &GmailSender{
		from: "c3@example.com",
		send: func(ctx context.Context, raw string) error {
			got = raw
			return nil
		},
		token: func() error { return errors.New("invalid_grant") },
	}

	require.NoError(t, g.Send(context.Background(), Message{To: "a@example.com", Subject: "S", Text: "t"}))
	assert.NotEmpty(t, got)

	err := g.Verify(context.Background())
	assert.True(t, errors.Is(err, ErrDelivery))
}

func TestResendSender(t *testing.T) {
	var payload resendEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewResendSender("key-123", "C3 <noreply@c3.example>")
	s.endpoint = srv.URL

	msg := ConfirmationMessage("new@example.com", "New", "C3-111111", nil, writeAttachment(t))
	require.NoError(t, s.Send(context.Background(), msg))

	assert.Equal(t, "new@example.com", payload.To)
	assert.Contains(t, payload.HTML, "C3-111111")
	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "C3-Membership-Card-C3-111111.pdf", payload.Attachments[0].Filename)
	content, err := base64.StdEncoding.DecodeString(payload.Attachments[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 fake", string(content))
}

func TestResendSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewResendSender("key", "from@example.com")
	s.endpoint = srv.URL

	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "s", HTML: "<p>x</p>"})
	assert.True(t, errors.Is(err, ErrDelivery))
}

func TestNewSenderSelectsTransport(t *testing.T) {
	ctx := context.Background()

	s, err := NewSender(ctx, config.Config{EmailTransport: config.TransportLog})
	require.NoError(t, err)
	assert.Equal(t, "log", s.Name())

	s, err = NewSender(ctx, config.Config{EmailTransport: config.TransportSMTP, SMTPHost: "smtp.example.com", SMTPPort: 587})
	require.NoError(t, err)
	assert.Equal(t, "smtp", s.Name())

	s, err = NewSender(ctx, config.Config{EmailTransport: config.TransportResend, ResendAPIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "resend", s.Name())

	_, err = NewSender(ctx, config.Config{EmailTransport: "pigeon"})
	assert.Error(t, err)
}

func TestConfirmationMessageEscapesInput(t *testing.T) {
	msg := ConfirmationMessage("a@example.com", "<script>", "C3-100000", []string{"AI & ML"}, "")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "AI &amp; ML")
	assert.Empty(t, msg.Attachments)
}

func TestDelivers(t *testing.T) {
	assert.False(t, Delivers(LogSender{}))
	assert.True(t, Delivers(NewResendSender("key", "c3@example.com")))
}
