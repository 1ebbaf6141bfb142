package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prem22k/c3-backend/logger"
)

const resendAPI = "https://api.resend.com/emails"

// ---- Resend payloads ----

type resendAttachment struct {
	Filename string `json:"filename"`
	// Resend expects base64-encoded content
	Content string `json:"content"`
}

type resendEmail struct {
	From        string             `json:"from"`
	To          string             `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Text        string             `json:"text,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type ResendSender struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendAPI,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
}

func (r *ResendSender) Name() string { return "resend" }

func (r *ResendSender) Verify(ctx context.Context) error {
	if r.apiKey == "" {
		return fmt.Errorf("%w: missing RESEND_API_KEY", ErrDelivery)
	}
	return nil
}

func (r *ResendSender) Send(ctx context.Context, msg Message) error {
	payload := resendEmail{
		From:    r.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	for _, a := range msg.Attachments {
		content, err := os.ReadFile(a.Path)
		if err != nil {
			return fmt.Errorf("%w: read attachment: %v", ErrDelivery, err)
		}
		name := a.Name
		if name == "" {
			name = filepath.Base(a.Path)
		}
		payload.Attachments = append(payload.Attachments, resendAttachment{
			Filename: name,
			Content:  base64.StdEncoding.EncodeToString(content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %v", ErrDelivery, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrDelivery, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send email via Resend: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: Resend API error: %s", ErrDelivery, resp.Status)
	}

	logger.Log.Info(fmt.Sprintf("[email] ✅ Email sent to %s via Resend.", msg.To))
	return nil
}
