package notify

import (
	"log"
	"net/mail"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ues-sigs/guarderia/core"
	appfs "github.com/ues-sigs/guarderia/fs"
)

// captureEmailService keeps sent messages in memory for inspection.
type captureEmailService struct {
	sent []*core.EmailMessage
}

func (svc *captureEmailService) SendMessages(messages ...*core.EmailMessage) {
	svc.sent = append(svc.sent, messages...)
}

func Test_emailDispatcher_send(t *testing.T) {
	core.SetTemplateFS(appfs.FS)
	logger := core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	guardian := mail.Address{Name: "María Hernández", Address: "madre@test.sv"}

	t.Run("unexcused absence renders the embedded template", func(t *testing.T) {
		mailSvc := &captureEmailService{}
		d := NewEmailDispatcher(mailSvc, logger)

		if ok := d.UnexcusedAbsence(guardian, "Valeria Hernández"); !ok {
			t.Fatal("UnexcusedAbsence() = false; want true")
		}
		if len(mailSvc.sent) != 1 {
			t.Fatalf("sent %d messages; want 1", len(mailSvc.sent))
		}
		msg := mailSvc.sent[0]
		if !msg.HasContent() {
			t.Fatal("message has no rendered content")
		}
		for _, body := range []string{msg.TextContent, msg.HTMLContent} {
			if !strings.Contains(body, "Valeria Hernández") {
				t.Errorf("rendered body missing child name:\n%s", body)
			}
		}
	})

	t.Run("permission notifications render", func(t *testing.T) {
		mailSvc := &captureEmailService{}
		d := NewEmailDispatcher(mailSvc, logger)

		if ok := d.PermissionSubmitted(guardian, "Valeria Hernández", time.Now(), "medical"); !ok {
			t.Fatal("PermissionSubmitted() = false; want true")
		}
		if ok := d.PermissionApproved(guardian, "Valeria Hernández", "01/09/2026", "medical", "control pediátrico", ""); !ok {
			t.Fatal("PermissionApproved() = false; want true")
		}
		for _, msg := range mailSvc.sent {
			if !msg.HasContent() {
				t.Errorf("%s: message has no rendered content", msg.TemplateName)
			}
			if !strings.Contains(msg.TextContent, "Cita médica") {
				t.Errorf("%s: body missing type label:\n%s", msg.TemplateName, msg.TextContent)
			}
		}
	})

	t.Run("nil provider reports failure", func(t *testing.T) {
		d := NewEmailDispatcher(nil, logger)
		if ok := d.UnexcusedAbsence(guardian, "Valeria Hernández"); ok {
			t.Error("UnexcusedAbsence() = true; want false")
		}
	})

	t.Run("missing recipient reports failure", func(t *testing.T) {
		mailSvc := &captureEmailService{}
		d := NewEmailDispatcher(mailSvc, logger)
		if ok := d.UnexcusedAbsence(mail.Address{}, "Valeria Hernández"); ok {
			t.Error("UnexcusedAbsence() = true; want false")
		}
		if len(mailSvc.sent) != 0 {
			t.Errorf("sent %d messages; want 0", len(mailSvc.sent))
		}
	})
}
