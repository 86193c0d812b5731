package user

import (
	"testing"

	"github.com/ues-sigs/guarderia/core"
)

type captureEmailService struct {
	sent []*core.EmailMessage
}

func (svc *captureEmailService) SendMessages(messages ...*core.EmailMessage) {
	svc.sent = append(svc.sent, messages...)
}

func TestSendPasswordResetMail(t *testing.T) {
	usr := User{
		ID:       "6cd55ba5-c9e4-4d43-9bbd-ec1ca2c194ad",
		Name:     "María Hernández",
		Username: "madre",
		Email:    "madre@test.sv",
	}

	t.Run("no provider configured", func(t *testing.T) {
		svc := &service{}
		svc.sendPasswordResetMail(usr) // must not dereference a nil provider
	})

	t.Run("message queued", func(t *testing.T) {
		mailSvc := &captureEmailService{}
		svc := &service{mailSvc: mailSvc}
		svc.sendPasswordResetMail(usr)

		if len(mailSvc.sent) != 1 {
			t.Fatalf("sent %d messages; want 1", len(mailSvc.sent))
		}
		msg := mailSvc.sent[0]
		if msg.TemplateName != "password-reset" {
			t.Errorf("TemplateName = %q; want password-reset", msg.TemplateName)
		}
		if len(msg.To) != 1 || msg.To[0].Address != usr.Email {
			t.Errorf("To = %v; want %s", msg.To, usr.Email)
		}
	})
}
