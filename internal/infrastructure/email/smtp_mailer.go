// Package email delivers transactional email over SMTP using embedded HTML templates.
package email

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when SMTP credentials are missing
var ErrNotConfigured = errors.New("email: smtp not configured")

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer implements integration.Mailer
type SMTPMailer struct {
	addr     string
	auth     smtp.Auth
	from     mail.Address
	renderer *Renderer
	send     sendFunc
	now      func() time.Time
	logger   *zap.Logger
}

var _ integration.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer. STARTTLS is negotiated by net/smtp when the
// server offers it.
func NewSMTPMailer(cfg config.SMTPConfig, renderer *Renderer, logger *zap.Logger) (*SMTPMailer, error) {
	if !cfg.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if renderer == nil {
		return nil, errors.New("email: renderer is required")
	}
	host := cfg.Host
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	name := cfg.FromName
	if name == "" {
		name = "Waggin Meals"
	}
	return &SMTPMailer{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		auth:     smtp.PlainAuth("", cfg.Username, cfg.Password, host),
		from:     mail.Address{Name: name, Address: from},
		renderer: renderer,
		send:     smtp.SendMail,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Send renders and delivers one email
func (m *SMTPMailer) Send(ctx context.Context, e integration.Email) error {
	to, err := mail.ParseAddress(e.To)
	if err != nil {
		return fmt.Errorf("email: invalid recipient %q: %w", e.To, err)
	}
	subject, body, err := m.renderer.Render(e)
	if err != nil {
		return err
	}
	msg, err := m.buildMessage(to, subject, body)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(m.addr, m.auth, m.from.Address, []string{to.Address}, msg); err != nil {
		return fmt.Errorf("email: send %s: %w", e.Type, err)
	}
	m.logger.Debug("Email delivered",
		zap.String("type", string(e.Type)),
		zap.String("to", to.Address))
	return nil
}

func (m *SMTPMailer) buildMessage(to *mail.Address, subject, html string) ([]byte, error) {
	var buf bytes.Buffer
	headers := [][2]string{
		{"From", m.from.String()},
		{"To", to.String()},
		{"Subject", mime.QEncoding.Encode("utf-8", subject)},
		{"Date", m.now().Format(time.RFC1123Z)},
		{"Message-ID", m.messageID()},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="UTF-8"`},
		{"Content-Transfer-Encoding", "quoted-printable"},
	}
	for _, h := range headers {
		buf.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(html)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *SMTPMailer) messageID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	domain := "wagginmeals.com"
	if at := strings.LastIndex(m.from.Address, "@"); at >= 0 {
		domain = m.from.Address[at+1:]
	}
	return "<" + hex.EncodeToString(b) + "@" + domain + ">"
}
