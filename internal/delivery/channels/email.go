package channels

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// SMTPConfig thông tin máy chủ SMTP
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// RenderedTemplate là template đã được render
type RenderedTemplate struct {
	Subject string
	Content string
	CTAs    []RenderedCTA
}

// RenderedCTA nút bấm trong email
type RenderedCTA struct {
	Label  string
	Action string
}

// BuildMessage dựng message gomail từ template đã render
func BuildMessage(cfg SMTPConfig, recipient string, template *RenderedTemplate) *gomail.Message {
	ctaHTML := ""
	for _, cta := range template.CTAs {
		ctaHTML += fmt.Sprintf(`<a href="%s" style="display:inline-block;padding:10px 20px;margin:5px;text-decoration:none;border-radius:5px;background-color:#007bff;color:#fff;">%s</a>`,
			html.EscapeString(cta.Action), html.EscapeString(cta.Label))
	}

	htmlContent := template.Content
	if ctaHTML != "" {
		htmlContent += "<div style='margin-top:20px;'>" + ctaHTML + "</div>"
	}

	msg := gomail.NewMessage()
	if cfg.FromName != "" {
		msg.SetAddressHeader("From", cfg.From, cfg.FromName)
	} else {
		msg.SetHeader("From", cfg.From)
	}
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", template.Subject)
	msg.SetBody("text/html", htmlContent)
	return msg
}

// SendEmail gửi email qua SMTP
func SendEmail(cfg SMTPConfig, recipient string, template *RenderedTemplate) error {
	msg := BuildMessage(cfg, recipient, template)
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return dialer.DialAndSend(msg)
}
