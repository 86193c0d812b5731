// Package inmemdb provides mutex-guarded in-memory repositories. They
// back the test suites and local tinkering; production uses the sqlx
// repositories.
package inmemdb

import (
	"sync"

	"github.com/ues-sigs/guarderia/core/absence"
	"github.com/ues-sigs/guarderia/core/attendance"
	"github.com/ues-sigs/guarderia/core/child"
	"github.com/ues-sigs/guarderia/core/classroom"
	"github.com/ues-sigs/guarderia/core/user"
)

type DB struct {
	mu sync.RWMutex

	users         map[string]user.User
	children      map[string]child.Child
	guardianships map[string]child.Guardianship
	pickups       map[string]child.PickupPerson
	teachers      map[string]classroom.Teacher
	rooms         map[string]classroom.Room
	sections      map[string]classroom.Section
	assignments   map[string]classroom.Assignment // keyed by child ID
	schedules     map[string]classroom.Schedule
	records       map[string]attendance.Record
	permissions   map[string]absence.Permission
}

func Open() *DB {
	return &DB{
		users:         make(map[string]user.User),
		children:      make(map[string]child.Child),
		guardianships: make(map[string]child.Guardianship),
		pickups:       make(map[string]child.PickupPerson),
		teachers:      make(map[string]classroom.Teacher),
		rooms:         make(map[string]classroom.Room),
		sections:      make(map[string]classroom.Section),
		assignments:   make(map[string]classroom.Assignment),
		schedules:     make(map[string]classroom.Schedule),
		records:       make(map[string]attendance.Record),
		permissions:   make(map[string]absence.Permission),
	}
}
