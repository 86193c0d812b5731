package classroom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleOverlaps(t *testing.T) {
	base := Schedule{SectionID: "s1", Weekday: time.Monday, StartTime: "08:00", EndTime: "12:00"}

	tests := []struct {
		name  string
		other Schedule
		want  bool
	}{
		{
			name:  "identical slot",
			other: Schedule{SectionID: "s1", Weekday: time.Monday, StartTime: "08:00", EndTime: "12:00"},
			want:  true,
		},
		{
			name:  "partial overlap",
			other: Schedule{SectionID: "s1", Weekday: time.Monday, StartTime: "11:00", EndTime: "13:00"},
			want:  true,
		},
		{
			name:  "contained",
			other: Schedule{SectionID: "s1", Weekday: time.Monday, StartTime: "09:00", EndTime: "10:00"},
			want:  true,
		},
		{
			name:  "back to back",
			other: Schedule{SectionID: "s1", Weekday: time.Monday, StartTime: "12:00", EndTime: "14:00"},
			want:  false,
		},
		{
			name:  "other weekday",
			other: Schedule{SectionID: "s1", Weekday: time.Tuesday, StartTime: "08:00", EndTime: "12:00"},
			want:  false,
		},
		{
			name:  "other section",
			other: Schedule{SectionID: "s2", Weekday: time.Monday, StartTime: "08:00", EndTime: "12:00"},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestNewScheduleValidate(t *testing.T) {
	ns := NewSchedule{Weekday: time.Friday, StartTime: "08:00", EndTime: "12:00"}
	assert.NoError(t, ns.Validate())

	ns.EndTime = "08:00"
	assert.Error(t, ns.Validate())

	ns.EndTime = "not-a-time"
	assert.Error(t, ns.Validate())
}
