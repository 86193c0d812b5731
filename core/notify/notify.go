// Package notify sends the guardian/teacher notifications triggered by
// attendance and absence-permission events. Dispatch is best-effort:
// implementations report success as a boolean and never propagate
// delivery problems to the caller.
package notify

import (
	"net/mail"
	"time"

	"github.com/ues-sigs/guarderia/core"
)

type Dispatcher interface {
	// UnexcusedAbsence notifies a guardian that a child was marked
	// absent without a justification.
	UnexcusedAbsence(to mail.Address, childName string) bool
	// PermissionSubmitted acknowledges a new absence-permission request
	// to the guardian.
	PermissionSubmitted(to mail.Address, childName string, startDate time.Time, permType string) bool
	// PermissionApproved informs the child's section teacher of an
	// approved absence. period and timeWindow are preformatted.
	PermissionApproved(to mail.Address, childName, period, permType, reason, timeWindow string) bool
}

type emailDispatcher struct {
	mailSvc core.EmailService
	logger  core.Logger
}

var _ Dispatcher = (*emailDispatcher)(nil)

// NewEmailDispatcher adapts an EmailService into a Dispatcher. A nil
// mailSvc yields a dispatcher that reports every send as failed, for
// deployments without a configured provider.
func NewEmailDispatcher(mailSvc core.EmailService, logger core.Logger) Dispatcher {
	return &emailDispatcher{mailSvc: mailSvc, logger: logger}
}

func (d *emailDispatcher) UnexcusedAbsence(to mail.Address, childName string) bool {
	return d.send(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "Notificación de inasistencia - " + childName,
		TemplateName: "unexcused-absence",
		TemplateData: struct {
			ChildName string
			Date      string
		}{childName, time.Now().Format("02/01/2006")},
	})
}

func (d *emailDispatcher) PermissionSubmitted(to mail.Address, childName string, startDate time.Time, permType string) bool {
	return d.send(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "Solicitud de permiso registrada - " + childName,
		TemplateName: "permission-submitted",
		TemplateData: struct {
			ChildName string
			StartDate string
			Type      string
		}{childName, startDate.Format("02/01/2006"), TypeLabel(permType)},
	})
}

func (d *emailDispatcher) PermissionApproved(to mail.Address, childName, period, permType, reason, timeWindow string) bool {
	return d.send(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "Permiso de ausencia aprobado - " + childName,
		TemplateName: "permission-approved",
		TemplateData: struct {
			ChildName  string
			Period     string
			Type       string
			Reason     string
			TimeWindow string
		}{childName, period, TypeLabel(permType), reason, timeWindow},
	})
}

func (d *emailDispatcher) send(msg *core.EmailMessage) bool {
	if d.mailSvc == nil {
		d.logger.Warn("notify: no email provider configured, dropping " + msg.TemplateName)
		return false
	}
	if !msg.HasRecipients() || msg.To[0].Address == "" {
		d.logger.Warn("notify: no recipient on file, dropping " + msg.TemplateName)
		return false
	}
	if err := msg.Render(); err != nil {
		d.logger.Error("notify: rendering "+msg.TemplateName, err)
		return false
	}
	if !msg.HasContent() {
		d.logger.Warn("notify: template " + msg.TemplateName + " rendered empty, dropping")
		return false
	}
	d.mailSvc.SendMessages(msg)
	return true
}

// TypeLabel maps an absence-permission type code to its user-facing
// Spanish label.
func TypeLabel(permType string) string {
	switch permType {
	case "medical":
		return "Cita médica"
	case "family":
		return "Asunto familiar"
	case "personal":
		return "Motivo personal"
	}
	return permType
}
