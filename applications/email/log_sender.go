package email

import (
	"context"
	"fmt"

	"github.com/prem22k/c3-backend/logger"
)

// LogSender is the mock transport: it only logs what would have been sent.
type LogSender struct{}

func (LogSender) Name() string { return "log" }

func (LogSender) Verify(ctx context.Context) error { return nil }

// Delivers is false: nothing leaves the process.
func (LogSender) Delivers() bool { return false }

func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.Log.Warn(fmt.Sprintf("[email] Mock email triggered. To: %s | Subject: %s | Attachments: %d",
		msg.To, msg.Subject, len(msg.Attachments)))
	return nil
}
