package notification

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// MailConfig SMTP mail configuration
type MailConfig struct {
	Host     string `env:"MAIL_HOST"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	Port     int64  `env:"MAIL_PORT"`
	From     string `env:"MAIL_FROM"`
}

// Mailer sends notification mail over SMTP. A zero-configured mailer is valid:
// sends become no-ops so a missing SMTP setup never breaks a call.
type Mailer struct {
	cfg     MailConfig
	timeout time.Duration
}

// NewMailer creates a mailer from config
func NewMailer(cfg MailConfig) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Mailer{cfg: cfg, timeout: 10 * time.Second}
}

// Configured reports whether SMTP credentials are present
func (m *Mailer) Configured() bool {
	return m.cfg.Host != "" && m.cfg.Username != ""
}

// Send delivers an HTML mail. The context bounds the whole SMTP exchange.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !m.Configured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(m.timeout))
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(nil); err != nil {
			return fmt.Errorf("smtp starttls failed: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if ok, _ := client.Extension("AUTH"); ok {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt failed: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.cfg.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if _, err := wc.Write([]byte(msg.String())); err != nil {
		wc.Close()
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close failed: %w", err)
	}

	return client.Quit()
}

// LeadSummary carries the lead and call details included in owner notifications
type LeadSummary struct {
	Phone         string
	Name          string
	Email         string
	Company       string
	InterestLevel string
	Duration      int
	Turns         int
	Transcript    string
}

// NotifyNewLead mails the owner a summary of a finished call
func (m *Mailer) NotifyNewLead(ctx context.Context, notifyEmail string, lead LeadSummary) error {
	if notifyEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("New Lead: %s", lead.Phone)

	var b strings.Builder
	b.WriteString("<h2>New AI Receptionist Lead</h2>")
	b.WriteString("<h3>Contact Info</h3><ul>")
	b.WriteString("<li><strong>Phone:</strong> " + lead.Phone + "</li>")
	if lead.Name != "" {
		b.WriteString("<li><strong>Name:</strong> " + lead.Name + "</li>")
	}
	if lead.Email != "" {
		b.WriteString("<li><strong>Email:</strong> " + lead.Email + "</li>")
	}
	if lead.Company != "" {
		b.WriteString("<li><strong>Company:</strong> " + lead.Company + "</li>")
	}
	b.WriteString("</ul><h3>Call Details</h3><ul>")
	b.WriteString(fmt.Sprintf("<li><strong>Duration:</strong> %d seconds</li>", lead.Duration))
	b.WriteString(fmt.Sprintf("<li><strong>Turns:</strong> %d</li>", lead.Turns))
	if lead.InterestLevel != "" {
		b.WriteString("<li><strong>Interest Level:</strong> " + lead.InterestLevel + "</li>")
	}
	b.WriteString("</ul>")
	if lead.Transcript != "" {
		b.WriteString("<h3>Transcript</h3><pre>" + lead.Transcript + "</pre>")
	}

	return m.Send(ctx, notifyEmail, subject, b.String())
}

// SendSetupLink mails the onboarding link promised to the prospect on the phone
func (m *Mailer) SendSetupLink(ctx context.Context, to, name string) error {
	if name == "" {
		name = "there"
	}

	subject := "AI Always Answer - Your Setup Link!"
	body := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>Nice talking to you!</h2>
<p>Hi %s,</p>
<p>As promised on the phone, here is the link to get your AI Always Answer receptionist set up.</p>
<p><a href="https://aialwaysanswer.com/get-started">Get Started for $99/mo</a></p>
<p><strong>What happens next?</strong></p>
<ol>
<li>Click the link above to subscribe.</li>
<li>We'll build your custom AI persona (usually within 24 hours).</li>
<li>Your phones start working for you instead of against you.</li>
</ol>
<p>If you have any questions, just reply to this email.</p>
<p>Best,<br><strong>The AI Always Answer Team</strong></p>
</div>`, name)

	return m.Send(ctx, to, subject, body)
}
