package notify

import (
	"net/mail"
	"sync"
	"time"
)

// Event is one recorded dispatch.
type Event struct {
	Kind      string // "unexcused-absence" | "permission-submitted" | "permission-approved"
	To        mail.Address
	ChildName string
}

// Recorder is a Dispatcher for tests: it records every dispatch and
// returns a configurable result.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
	Fail   bool // when set, every dispatch reports failure
}

var _ Dispatcher = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) UnexcusedAbsence(to mail.Address, childName string) bool {
	return r.record("unexcused-absence", to, childName)
}

func (r *Recorder) PermissionSubmitted(to mail.Address, childName string, _ time.Time, _ string) bool {
	return r.record("permission-submitted", to, childName)
}

func (r *Recorder) PermissionApproved(to mail.Address, childName, _, _, _, _ string) bool {
	return r.record("permission-approved", to, childName)
}

func (r *Recorder) Sent(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, evt := range r.Events {
		if evt.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = nil
}

func (r *Recorder) record(kind string, to mail.Address, childName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return false
	}
	r.Events = append(r.Events, Event{Kind: kind, To: to, ChildName: childName})
	return true
}
