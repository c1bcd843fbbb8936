package service

import (
	"testing"

	"github.com/sgtmake/storefront-api/internal/config"
)

func TestEmailServiceEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  *config.EmailConfig
		want bool
	}{
		{name: "nil config", cfg: nil, want: false},
		{name: "disabled", cfg: &config.EmailConfig{Enabled: false, Host: "smtp.example.com"}, want: false},
		{name: "no host", cfg: &config.EmailConfig{Enabled: true, Host: "  "}, want: false},
		{name: "enabled", cfg: &config.EmailConfig{Enabled: true, Host: "smtp.example.com"}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewEmailService(tc.cfg).Enabled(); got != tc.want {
				t.Fatalf("enabled want %v got %v", tc.want, got)
			}
		})
	}
}

func TestSendOrderPaidEmailDisabledIsNoop(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := svc.SendOrderPaidEmail("user@example.com", OrderPaidEmailInput{Receipt: "rcpt_x"}); err != nil {
		t.Fatalf("disabled send should be a noop, got %v", err)
	}
}
