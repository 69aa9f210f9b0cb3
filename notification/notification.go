package notification

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"activityflow/domain"
	"activityflow/session"

	"github.com/sirupsen/logrus"
)

type SmtpConfig struct {
	// Address is the host:port of the SMTP relay. Mail is disabled
	// when empty.
	Address string
	From    string

	Username string
	Secret   string
}

var (
	ActiveSmtpConfig = ParseSmtpConfigFromEnv()

	SendMailFunc     = sendMail
	SendStepMailFunc = SendStepMail
)

func ParseSmtpConfigFromEnv() SmtpConfig {
	return SmtpConfig{
		Address:  os.Getenv("SMTP_SERVICE"),
		From:     os.Getenv("SMTP_FROM"),
		Username: os.Getenv("SMTP_USER"),
		Secret:   os.Getenv("SMTP_SECRET"),
	}
}

// SendStepMail delivers the mail described by a send_email step to the
// activity's users and accepted masterminds.
func SendStepMail(detail *domain.ActivityDetail, step domain.StepNode, s *session.Session) error {
	subject, _ := step.Data["subject"].(string)
	if subject == "" {
		subject = detail.Name
	}
	body, _ := step.Data["body"].(string)

	recipients := []string{}
	seen := map[string]bool{}
	appendAddr := func(email string) {
		email = strings.TrimSpace(email)
		if email != "" && !seen[email] {
			seen[email] = true
			recipients = append(recipients, email)
		}
	}
	for _, u := range detail.Users {
		appendAddr(u.Email)
	}
	for _, m := range detail.Masterminds {
		if m.Accepted == domain.AcceptedAccepted {
			appendAddr(m.User.Email)
		}
	}
	for _, m := range detail.SubMasterminds {
		if m.Accepted == domain.AcceptedAccepted {
			appendAddr(m.User.Email)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	return SendMailFunc(recipients, subject, body)
}

func sendMail(to []string, subject, body string) error {
	c := ActiveSmtpConfig
	if c.Address == "" {
		logrus.Infof("mail disabled, dropping message %q to %v\n", subject, to)
		return nil
	}

	var auth smtp.Auth
	if c.Username != "" {
		host := c.Address
		if idx := strings.Index(host, ":"); idx >= 0 {
			host = host[:idx]
		}
		auth = smtp.PlainAuth("", c.Username, c.Secret, host)
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n"+
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		c.From, strings.Join(to, ", "), escapeHeader(subject), body)
	return smtp.SendMail(c.Address, auth, c.From, to, []byte(message))
}

func escapeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.ReplaceAll(value, "\n", " ")
}
