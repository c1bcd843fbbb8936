package service

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/sgtmake/storefront-api/internal/config"
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 判断邮件服务是否启用
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled && strings.TrimSpace(s.cfg.Host) != ""
}

// OrderPaidEmailInput 支付成功邮件输入
type OrderPaidEmailInput struct {
	Receipt  string
	Amount   models.Money
	Currency string
}

// SendOrderPaidEmail 发送支付成功通知
func (s *EmailService) SendOrderPaidEmail(toEmail string, input OrderPaidEmailInput) error {
	subject := fmt.Sprintf("Payment received for order %s", input.Receipt)
	body := fmt.Sprintf(
		"Your payment of %s %s for order %s has been confirmed.\nThank you for shopping with us.",
		input.Currency, input.Amount.String(), input.Receipt,
	)
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if !s.Enabled() {
		logger.Debugw("email_disabled_skip_send", "to", toEmail, "subject", subject)
		return nil
	}
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return ErrEmailInvalid
	}

	from := strings.TrimSpace(s.cfg.From)
	if from == "" {
		from = s.cfg.Username
	}
	fromHeader := from
	if name := strings.TrimSpace(s.cfg.FromName); name != "" {
		fromHeader = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), from)
	}

	headers := []string{
		"From: " + fromHeader,
		"To: " + toEmail,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, from, []string{toEmail}, []byte(message))
}
