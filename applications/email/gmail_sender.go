package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/prem22k/c3-backend/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender sends through the Gmail API using an OAuth2 refresh token.
type GmailSender struct {
	from string

	send  func(ctx context.Context, raw string) error
	token func() error
}

func NewGmailSender(ctx context.Context, clientID, clientSecret, refreshToken, from string) (*GmailSender, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	srv, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}

	return &GmailSender{
		from: from,
		send: func(ctx context.Context, raw string) error {
			_, err := srv.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
			return err
		},
		token: func() error {
			_, err := ts.Token()
			return err
		},
	}, nil
}

func (g *GmailSender) Name() string { return "gmail" }

// Verify exchanges the refresh token for an access token.
func (g *GmailSender) Verify(ctx context.Context) error {
	if err := g.token(); err != nil {
		return fmt.Errorf("%w: oauth2 token refresh: %v", ErrDelivery, err)
	}
	logger.Log.Info("[email] ✅ Gmail OAuth2 credentials verified")
	return nil
}

func (g *GmailSender) Send(ctx context.Context, msg Message) error {
	raw, err := encodeRaw(g.from, msg)
	if err != nil {
		return fmt.Errorf("%w: build message: %v", ErrDelivery, err)
	}
	if err := g.send(ctx, raw); err != nil {
		return fmt.Errorf("%w: gmail send: %v", ErrDelivery, err)
	}
	logger.Log.Info(fmt.Sprintf("[email] ✅ Email sent to %s via Gmail API.", msg.To))
	return nil
}

// encodeRaw renders the MIME message as the base64url payload Gmail expects.
func encodeRaw(from string, msg Message) (string, error) {
	var buf bytes.Buffer
	if _, err := buildMIME(from, msg).WriteTo(&buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}
