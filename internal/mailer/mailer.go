package mailer

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AdilMir1433/User-Service/internal/config"
)

const (
	accessTokenSubject = "Your Personal Access Token For DevXam"
	welcomeSubject     = "Welcome to DevXam!!"
)

var mailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "devxam",
	Subsystem: "users",
	Name:      "mails_sent_total",
	Help:      "Outbound mails by kind and result.",
}, []string{"kind", "result"})

type Mailer interface {
	SendAccessToken(to, token string) error
	SendWelcome(to, name, password, token string) error
	Enabled() bool
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// New returns an SMTP mailer, or a mailer that drops every message when no
// host or sender is configured.
func New(cfg config.SMTPConfig) Mailer {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.Security = strings.ToLower(strings.TrimSpace(cfg.Security))
	if cfg.Security == "" {
		cfg.Security = "starttls"
	}
	if cfg.Host == "" || cfg.From == "" {
		log.Printf("mailer disabled; SMTP host or from missing")
		return noopMailer{}
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	log.Printf("mailer enabled host=%s port=%s security=%s user=%s", cfg.Host, cfg.Port, cfg.Security, maskForLog(cfg.User))
	return &smtpMailer{cfg: cfg}
}

type noopMailer struct{}

func (noopMailer) SendAccessToken(to, _ string) error {
	log.Printf("mailer disabled; dropping access token mail to %s", to)
	return nil
}

func (noopMailer) SendWelcome(to, _, _, _ string) error {
	log.Printf("mailer disabled; dropping welcome mail to %s", to)
	return nil
}

func (noopMailer) Enabled() bool { return false }

func (m *smtpMailer) Enabled() bool { return true }

func (m *smtpMailer) SendAccessToken(to, token string) error {
	err := m.send(to, accessTokenSubject, AccessTokenBody(token))
	mailsSent.WithLabelValues("access_token", result(err)).Inc()
	return err
}

func (m *smtpMailer) SendWelcome(to, name, password, token string) error {
	err := m.send(to, welcomeSubject, WelcomeBody(name, to, password, token))
	mailsSent.WithLabelValues("welcome", result(err)).Inc()
	return err
}

func AccessTokenBody(token string) string {
	return "Greetings\nThis is Personal Access Token. Paste it into website and NEVER Share it with anyone\n\n" + token
}

func WelcomeBody(name, email, password, token string) string {
	return fmt.Sprintf("Greetings %s\nA very warm welcome to devXam. Following are your credentials for logIn\nEmail: %s\nPassword: %s\n\nPersonal Access Token:\n%s\n\nRegards\nDevXam Team",
		name, email, password, token)
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := message(m.cfg.From, to, subject, body)
	switch m.cfg.Security {
	case "ssl", "smtps":
		return m.sendSSL(to, msg)
	case "none":
		return smtp.SendMail(m.addr(), nil, m.cfg.From, []string{to}, msg)
	default:
		return m.sendStartTLS(to, msg)
	}
}

func (m *smtpMailer) sendStartTLS(to string, msg []byte) error {
	client, err := smtp.Dial(m.addr())
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	return m.deliver(client, to, msg)
}

func (m *smtpMailer) sendSSL(to string, msg []byte) error {
	conn, err := tls.Dial("tcp", m.addr(), &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()
	return m.deliver(client, to, msg)
}

func (m *smtpMailer) deliver(client *smtp.Client, to string, msg []byte) error {
	if m.cfg.User != "" && m.cfg.Pass != "" {
		if err := client.Auth(smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)); err != nil {
			return err
		}
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func (m *smtpMailer) addr() string {
	return net.JoinHostPort(m.cfg.Host, m.cfg.Port)
}

func message(from, to, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func maskForLog(s string) string {
	if s == "" {
		return "(none)"
	}
	if len(s) <= 2 {
		return "***"
	}
	return s[:1] + "***" + s[len(s)-1:]
}
