package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for outbound notifications
type EmailService interface {
	SendAdmissionDecision(msg AdmissionDecision) error
	SendPayslip(msg PayslipNotice) error
}

// AdmissionDecision is sent when a merit list run changes an applicant's status
type AdmissionDecision struct {
	ToEmail     string
	ToName      string
	ProgramName string
	Session     string
	Status      string
	Rank        *int
	Remarks     string
}

// PayslipNotice is sent when a payroll record is marked paid
type PayslipNotice struct {
	ToEmail       string
	ToName        string
	Period        string
	GrossSalary   string
	NetSalary     string
	PaymentMethod string
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

func (s *EmailServiceImpl) configured() bool {
	return s.config.Username != "" && s.config.Password != "" && s.config.Host != ""
}

// SendAdmissionDecision tells an applicant about a merit list outcome
func (s *EmailServiceImpl) SendAdmissionDecision(msg AdmissionDecision) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", msg.ToEmail).
			Str("status", msg.Status).
			Str("program", msg.ProgramName).
			Msg("SMTP credentials not configured - admission decision email not sent")
		return nil
	}

	subject := fmt.Sprintf("Admission update for %s (%s)", msg.ProgramName, msg.Session)

	rankLine := ""
	if msg.Rank != nil {
		rankLine = fmt.Sprintf("<p>Your merit position is <strong>%d</strong>.</p>", *msg.Rank)
	}
	remarksLine := ""
	if msg.Remarks != "" {
		remarksLine = fmt.Sprintf("<p>Remarks: %s</p>", html.EscapeString(msg.Remarks))
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Admission status update</h2>
				<p>Dear %s,</p>
				<p>Your application for <strong>%s</strong>, session %s, is now <strong>%s</strong>.</p>
				%s
				%s
				<p>Regards,<br>Admissions Office</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(msg.ToName), html.EscapeString(msg.ProgramName), html.EscapeString(msg.Session),
		html.EscapeString(msg.Status), rankLine, remarksLine)

	return s.sendHTMLEmail(msg.ToEmail, subject, body)
}

// SendPayslip notifies an employee that salary for a period was paid
func (s *EmailServiceImpl) SendPayslip(msg PayslipNotice) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", msg.ToEmail).
			Str("period", msg.Period).
			Msg("SMTP credentials not configured - payslip email not sent")
		return nil
	}

	subject := fmt.Sprintf("Payslip for %s", msg.Period)
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Salary paid for %s</h2>
				<p>Dear %s,</p>
				<table style="border-collapse: collapse;">
					<tr><td>Gross salary</td><td style="text-align: right;">%s</td></tr>
					<tr><td>Net salary</td><td style="text-align: right;"><strong>%s</strong></td></tr>
					<tr><td>Payment method</td><td style="text-align: right;">%s</td></tr>
				</table>
				<p>The full payslip is available from the HR office.</p>
				<p>Regards,<br>Accounts Office</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(msg.Period), html.EscapeString(msg.ToName), msg.GrossSalary, msg.NetSalary,
		html.EscapeString(msg.PaymentMethod))

	return s.sendHTMLEmail(msg.ToEmail, subject, body)
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	headers := map[string]string{
		"From":         from,
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\r\n", k, headers[k])
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	from := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	message := buildMessage(from, toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
