package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"

	"alumni-talent-platform/config"
)

// EmailService sends registration decision emails over SMTP.
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	loginURL  string
}

// DecisionEmailData is rendered into the decision template.
type DecisionEmailData struct {
	To       string
	Name     string
	Kind     string // alumni or company
	Approved bool
	Reason   string
	LoginURL string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		loginURL:  cfg.FrontendURL,
	}
}

var decisionTemplate = template.Must(template.New("decision").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>註冊審核結果</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <p>{{.Name}} 您好，</p>
    {{if .Approved}}
    <p>您的{{if eq .Kind "company"}}企業{{else}}校友{{end}}註冊申請已通過審核，現在可以登入使用平台功能。</p>
    <p><a href="{{.LoginURL}}">前往平台</a></p>
    {{else}}
    <p>很抱歉，您的{{if eq .Kind "company"}}企業{{else}}校友{{end}}註冊申請未通過審核。</p>
    <p>原因：{{.Reason}}</p>
    <p>您可以修正資料後重新提交申請。</p>
    {{end}}
  </div>
</body>
</html>`))

func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

// SendDecision notifies an applicant of an approve/reject decision.
func (s *EmailService) SendDecision(_ context.Context, data DecisionEmailData) error {
	if !s.IsConfigured() {
		return nil
	}
	if data.LoginURL == "" {
		data.LoginURL = s.loginURL
	}

	var body bytes.Buffer
	if err := decisionTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := "註冊申請已通過"
	if !data.Approved {
		subject = "註冊申請未通過"
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		data.To,
		mime.QEncoding.Encode("UTF-8", subject),
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{data.To}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
