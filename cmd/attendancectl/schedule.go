package main

import (
	"encoding/json"
	"os"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

// loadSchedule reads a timetable analysis, falling back to a bare weekly
// schedule object keyed by day name.
func loadSchedule(path string) (entity.WeeklySchedule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tt entity.TimetableAnalysis
	if err := json.Unmarshal(b, &tt); err == nil {
		if tt.WeeklySchedule.EventCount() > 0 {
			return tt.WeeklySchedule, nil
		}
		if len(tt.TimetableEvents) > 0 {
			return entity.ScheduleFromEvents(tt.TimetableEvents), nil
		}
	}

	var weekly entity.WeeklySchedule
	if err := json.Unmarshal(b, &weekly); err != nil {
		return nil, common.InvalidInputf("%s is neither a timetable analysis nor a weekly schedule", path)
	}
	return weekly, nil
}
