// File: /services/email_service.go
package services

import (
	"fmt"

	"clubnight-api/config"
	"clubnight-api/messaging"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
	log    *zerolog.Logger
}

func NewEmailService(cfg *config.Config, log *zerolog.Logger) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &EmailService{
		config: cfg,
		dialer: dialer,
		log:    log,
	}
}

const emailLayout = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #222; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #1a1033; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f5f3fa; padding: 30px; border-radius: 0 0 10px 10px; }
        .code { background: #e4def2; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0; }
        .code-number { font-size: 32px; font-weight: bold; color: #5b2bd6; letter-spacing: 8px; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Clubnight</h1>
            <p>%s</p>
        </div>
        <div class="content">
            %s
        </div>
        <div class="footer">
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`

func (es *EmailService) send(to, subject, title, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", fmt.Sprintf(emailLayout, title, body))

	if err := es.dialer.DialAndSend(m); err != nil {
		es.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	es.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

func codeBody(name, intro, code string) string {
	return fmt.Sprintf(`
            <h2>Hello %s!</h2>
            <p>%s</p>
            <div class="code">
                <p><strong>Your code is:</strong></p>
                <div class="code-number">%s</div>
                <p><small>This code will expire in 30 minutes.</small></p>
            </div>
            <p>If you did not ask for this code, please ignore this email.</p>`, name, intro, code)
}

// SendLoginCode mails the six digit code of a pending login
func (es *EmailService) SendLoginCode(to, firstName, code string) error {
	body := codeBody(firstName, "Use the code below to finish signing in.", code)
	return es.send(to, "Clubnight - Login code", "Login verification", body)
}

// SendPasswordChangeCode mails the six digit code of a pending password change
func (es *EmailService) SendPasswordChangeCode(to, firstName, code string) error {
	body := codeBody(firstName, "Use the code below to confirm your password change.", code)
	return es.send(to, "Clubnight - Password change code", "Password change", body)
}

// SendWinnerNotice tells a giveaway winner about the prize
func (es *EmailService) SendWinnerNotice(msg messaging.WinnerDrawn) error {
	name := msg.Email
	if msg.FirstName != nil && *msg.FirstName != "" {
		name = *msg.FirstName
	}

	body := fmt.Sprintf(`
            <h2>Congratulations %s!</h2>
            <p>You won the giveaway <strong>%s</strong>.</p>
            <div class="code">
                <p><strong>Your prize:</strong></p>
                <div class="code-number">%s</div>
            </div>
            <p>Show this email at the club entrance to collect it.</p>`, name, msg.Name, msg.Prize)

	return es.send(msg.Email, "Clubnight - You won a giveaway", "Giveaway winner", body)
}
