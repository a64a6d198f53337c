package service

import (
	"context"
	"fmt"

	"memberhub-backend/internal/config"
	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	gomail "gopkg.in/gomail.v2"
)

// Sender delivers a rendered HTML email. Implementations wrap one outbound
// provider; the EmailService on top is provider-agnostic.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// NewSender builds the configured provider backend.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return &smtpSender{
			dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password),
			from:   cfg.SMTP.From,
		}, nil
	case "sendgrid":
		return &sendgridSender{
			client: sendgrid.NewSendClient(cfg.SendGrid.APIKey),
			from:   cfg.SendGrid.From,
		}, nil
	}
	return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *smtpSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

type sendgridSender struct {
	client *sendgrid.Client
	from   string
}

func (s *sendgridSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", s.from))
	m.Subject = subject
	p := sgmail.NewPersonalization()
	for _, addr := range to {
		p.AddTos(sgmail.NewEmail("", addr))
	}
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", htmlBody))

	response, err := s.client.Send(m)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

type emailService struct {
	sender              Sender
	frontendURL         string
	inviteTTLDays       int
	verificationTTLMins int
}

func NewEmailService(sender Sender, frontendURL string, inviteTTLDays, verificationTTLMins int) EmailService {
	return &emailService{
		sender:              sender,
		frontendURL:         frontendURL,
		inviteTTLDays:       inviteTTLDays,
		verificationTTLMins: verificationTTLMins,
	}
}

func (s *emailService) send(ctx context.Context, to []string, subject, templateName string, data any) error {
	body, err := renderEmail(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s email: %w", templateName, err)
	}
	logger.ExternalServiceCall("email", templateName, "to", to)
	err = s.sender.Send(ctx, to, subject, body)
	logger.ExternalServiceResult("email", templateName, err)
	return err
}

func (s *emailService) SendInvitation(ctx context.Context, to, code, link string) error {
	return s.send(ctx, []string{to}, "Your MemberHub invitation", "invitation", map[string]any{
		"Code":    code,
		"Link":    link,
		"TTLDays": s.inviteTTLDays,
	})
}

func (s *emailService) SendVerification(ctx context.Context, to, name, link, code string) error {
	return s.send(ctx, []string{to}, "Verify your email address", "verification", map[string]any{
		"Name":    name,
		"Link":    link,
		"Code":    code,
		"TTLMins": s.verificationTTLMins,
	})
}

func (s *emailService) SendPasswordReset(ctx context.Context, to, name, link, code string) error {
	return s.send(ctx, []string{to}, "Reset your password", "password_reset", map[string]any{
		"Name":    name,
		"Link":    link,
		"Code":    code,
		"TTLMins": s.verificationTTLMins,
	})
}

func (s *emailService) SendStatusNotification(ctx context.Context, to, name string, status domain.ApplicationStatus, reason string) error {
	templateName := "status_approved"
	subject := "Your application was approved"
	if status == domain.ApplicationRejected {
		templateName = "status_rejected"
		subject = "Update on your application"
	}
	return s.send(ctx, []string{to}, subject, templateName, map[string]any{
		"Name":   name,
		"Reason": reason,
	})
}

func (s *emailService) SendApplicantAlert(ctx context.Context, to []string, alert ApplicantAlert) error {
	if len(to) == 0 {
		return nil
	}
	return s.send(ctx, to, fmt.Sprintf("Applicant awaiting review: %s", alert.FullName), "applicant_alert", alert)
}
