package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/i18n"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// VerificationApprovedEmail 认证通过通知内容
type VerificationApprovedEmail struct {
	FullName     string
	DiscountCode string
	Percentage   int
	ExpiresAt    time.Time
}

// SendVerificationApproved 发送认证通过邮件（含折扣码）
func (s *EmailService) SendVerificationApproved(toEmail string, input VerificationApprovedEmail, locale string) error {
	subject, body := buildVerificationApprovedContent(input, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendNewsletterWelcome 发送订阅欢迎邮件
func (s *EmailService) SendNewsletterWelcome(toEmail, unsubscribeURL, locale string) error {
	subject := i18n.T(locale, "email.newsletter_welcome.subject")
	body := i18n.Sprintf(locale, "email.newsletter_welcome.body", unsubscribeURL)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendNewsletterBroadcast 向单个订阅者发送群发内容，返回的错误由调用方按收件人汇总
func (s *EmailService) SendNewsletterBroadcast(toEmail, subject, content string) error {
	body := strings.TrimSpace(content) + i18n.T(i18n.DefaultLocale, "email.newsletter_broadcast.footer")
	return s.sendTextEmail(toEmail, strings.TrimSpace(subject), body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s == nil || s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	msg := buildEmailMessage(buildFromAddress(s.cfg.From, s.cfg.FromName), toEmail, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	client, err := dialSMTP(addr, s.cfg.Host, s.cfg.UseSSL, s.cfg.UseTLS)
	if err != nil {
		return err
	}
	defer client.Close()
	return normalizeEmailSendError(deliverSMTP(client, auth, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildVerificationApprovedContent(input VerificationApprovedEmail, locale string) (string, string) {
	name := strings.TrimSpace(input.FullName)
	if name == "" {
		name = "there"
	}
	subject := i18n.T(locale, "email.verification_approved.subject")
	body := i18n.Sprintf(locale, "email.verification_approved.body",
		name, input.Percentage, input.DiscountCode, input.ExpiresAt.UTC().Format("2006-01-02"))
	return subject, body
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

// dialSMTP useSSL 为隐式 TLS（465），useTLS 为 STARTTLS
func dialSMTP(addr, host string, useSSL, useTLS bool) (*smtp.Client, error) {
	if useSSL {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
		if err != nil {
			return nil, err
		}
		client, err := smtp.NewClient(conn, host)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return client, nil
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, err
	}
	if useTLS {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			_ = client.Close()
			return nil, err
		}
	}
	return client, nil
}

func deliverSMTP(client *smtp.Client, auth smtp.Auth, from string, to []string, msg []byte) error {
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

var recipientRejectedKeywords = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"unknown mailbox",
	"mailbox unavailable",
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	for _, keyword := range recipientRejectedKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "address", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
