// Package attendance derives attendance statistics from class counts.
package attendance

import (
	"math"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
)

// Compute derives attendance statistics for a class count.
//
// classes_to_attend truncates toward zero, so the figure can fall one class
// short of actually reaching the target.
func Compute(total, attended int, target float64) (entity.AttendanceStats, error) {
	v := common.NewValidator()
	v.Field("total_classes", total, common.NonNegative)
	v.Field("attended_classes", attended, common.NonNegative)
	v.Field("target_percentage", target, common.Between(0, 100))
	if err := common.ValidateAndReturnError(v); err != nil {
		return entity.AttendanceStats{}, err
	}

	var pct float64
	if total > 0 {
		pct = float64(attended) / float64(total) * 100
	}

	toAttend := 0
	if pct < target {
		toAttend = max(0, int(target/100*float64(total)-float64(attended)))
	}

	return entity.AttendanceStats{
		TotalClasses:             total,
		AttendedClasses:          attended,
		AttendancePercentage:     round2(pct),
		RemainingClasses:         max(0, total-attended),
		ClassesToAttendForTarget: toAttend,
		TargetPercentage:         target,
	}, nil
}

// ComputeFromSchedule validates all inputs, multiplies working days by classes
// per day and then behaves like Compute. A zero product is rejected.
func ComputeFromSchedule(workingDays, perDay, attended int, target float64) (entity.AttendanceStats, error) {
	v := common.NewValidator()
	v.Field("total_working_days", workingDays, common.NonNegative)
	v.Field("classes_per_working_day", perDay, common.NonNegative)
	v.Field("attended_classes", attended, common.NonNegative)
	v.Field("target_percentage", target, common.Between(0, 100))
	if err := common.ValidateAndReturnError(v); err != nil {
		return entity.AttendanceStats{}, err
	}

	total := workingDays * perDay
	if total <= 0 {
		return entity.AttendanceStats{}, common.NewAppError("NO_CLASSES", "No classes found in the data", common.ErrNoClasses)
	}
	return Compute(total, attended, target)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
