package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/prem22k/c3-backend/logger"

	"gopkg.in/gomail.v2"
)

// SMTPSender delivers through an SMTP server. Several ports may be configured;
// Verify probes them in order and keeps the first one that accepts a connection.
type SMTPSender struct {
	host string
	user string
	pass string
	from string

	ports []int
	dial  func(d *gomail.Dialer) (gomail.SendCloser, error)

	mu     sync.Mutex
	active *gomail.Dialer
}

func NewSMTPSender(host string, port int, fallbackPorts []int, user, pass, from string) *SMTPSender {
	ports := []int{}
	seen := map[int]bool{}
	for _, p := range append([]int{port}, fallbackPorts...) {
		if p <= 0 || seen[p] {
			continue
		}
		seen[p] = true
		ports = append(ports, p)
	}

	return &SMTPSender{
		host:  host,
		user:  user,
		pass:  pass,
		from:  from,
		ports: ports,
		dial: func(d *gomail.Dialer) (gomail.SendCloser, error) {
			return d.Dial()
		},
	}
}

func (s *SMTPSender) Name() string { return "smtp" }

// Verify dials each candidate port. Port 465 uses implicit TLS, others STARTTLS.
func (s *SMTPSender) Verify(ctx context.Context) error {
	var lastErr error
	for _, port := range s.ports {
		if err := ctx.Err(); err != nil {
			return err
		}

		d := gomail.NewDialer(s.host, port, s.user, s.pass)
		d.TLSConfig = &tls.Config{ServerName: s.host}

		logger.Log.Info(fmt.Sprintf("[email] Verifying SMTP %s:%d (ssl=%t)", s.host, port, d.SSL))
		conn, err := s.dial(d)
		if err != nil {
			logger.Log.Warn(fmt.Sprintf("[email] SMTP %s:%d failed verification: %v", s.host, port, err))
			lastErr = err
			continue
		}
		_ = conn.Close()

		s.mu.Lock()
		s.active = d
		s.mu.Unlock()

		logger.Log.Info(fmt.Sprintf("[email] ✅ SMTP %s:%d verified", s.host, port))
		return nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no SMTP ports configured")
	}
	return fmt.Errorf("%w: all SMTP configurations failed: %v", ErrDelivery, lastErr)
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	d := s.dialer()
	if d == nil {
		if err := s.Verify(ctx); err != nil {
			return err
		}
		d = s.dialer()
	}

	conn, err := s.dial(d)
	if err != nil {
		return fmt.Errorf("%w: smtp dial: %v", ErrDelivery, err)
	}
	defer conn.Close()

	if err := gomail.Send(conn, buildMIME(s.from, msg)); err != nil {
		return fmt.Errorf("%w: smtp send: %v", ErrDelivery, err)
	}

	logger.Log.Info(fmt.Sprintf("[email] ✅ Email sent to %s via SMTP %s:%d.", msg.To, d.Host, d.Port))
	return nil
}

func (s *SMTPSender) dialer() *gomail.Dialer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
