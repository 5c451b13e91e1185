// Package delivery gửi email giao dịch (đặt lại mật khẩu, mời thành viên).
package delivery

import (
	"context"

	"content_studio/config"
	"content_studio/internal/delivery/channels"
	"content_studio/internal/logger"
)

// Mailer gửi một email đã render
type Mailer interface {
	Send(ctx context.Context, recipient string, template *channels.RenderedTemplate) error
}

// SMTPMailer gửi qua SMTP bằng gomail
type SMTPMailer struct {
	cfg  channels.SMTPConfig
	send func(cfg channels.SMTPConfig, recipient string, template *channels.RenderedTemplate) error
}

// NewSMTPMailer tạo mailer SMTP
func NewSMTPMailer(cfg channels.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: channels.SendEmail}
}

// Send gửi email; context đã hủy thì không gửi
func (m *SMTPMailer) Send(ctx context.Context, recipient string, template *channels.RenderedTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := logger.WithModule("delivery").WithField("recipient", recipient)
	if err := m.send(m.cfg, recipient, template); err != nil {
		log.WithError(err).Error("📧 [EMAIL] Gửi email thất bại")
		return err
	}
	log.WithField("subject", template.Subject).Info("📧 [EMAIL] Đã gửi email")
	return nil
}

// LogMailer chỉ ghi log, dùng khi chưa cấu hình SMTP (môi trường dev / test)
type LogMailer struct{}

// Send ghi nội dung email ra log
func (LogMailer) Send(_ context.Context, recipient string, template *channels.RenderedTemplate) error {
	fields := map[string]interface{}{
		"recipient": recipient,
		"subject":   template.Subject,
	}
	for i, cta := range template.CTAs {
		if i == 0 {
			fields["link"] = cta.Action
		}
	}
	logger.WithModule("delivery").WithFields(fields).Info("📧 [EMAIL] SMTP chưa cấu hình, chỉ ghi log")
	return nil
}

// NewMailer chọn SMTP khi có SMTP_HOST, ngược lại LogMailer
func NewMailer(c *config.Configuration) Mailer {
	if c == nil || c.SMTP_Host == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(channels.SMTPConfig{
		Host:     c.SMTP_Host,
		Port:     c.SMTP_Port,
		Username: c.SMTP_Username,
		Password: c.SMTP_Password,
		From:     c.SMTP_From,
		FromName: "Content Studio",
	})
}
