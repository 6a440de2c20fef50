package attendance

import "github.com/joseph-ayodele/attendance-tracker/internal/entity"

// StatsFromRecords treats every record as one held class; present and late
// both count as attended.
func StatsFromRecords(records []entity.AttendanceRecord, target float64) (entity.AttendanceStats, error) {
	attended := 0
	for _, r := range records {
		if r.Status.Counts() {
			attended++
		}
	}
	return Compute(len(records), attended, target)
}
