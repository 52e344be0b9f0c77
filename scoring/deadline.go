package scoring

import (
	"time"

	"github.com/Dosada05/prediction-pool/models"
)

// IsStageOpen reports whether a stage accepts prediction writes at now.
// A stage without a deadline is open.
func IsStageOpen(d *models.Deadline, now time.Time) bool {
	if d == nil {
		return true
	}
	if d.IsLocked {
		return false
	}
	return now.Before(d.DeadlineAt)
}
