package timer

import (
	"time"

	"github.com/tatipharma/pharmabi/internal/logging"
)

// LogTimeElapsed logs the amount of time since this function was defered at the debug level
func LogTimeElapsed(start time.Time, task string) {
	elapsed := time.Since(start)
	logging.Debugf("%s in %s", task, elapsed.Round(time.Microsecond))
}
