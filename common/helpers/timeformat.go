package helpers

import (
	"fmt"
	"math"
	"time"
)

const CalculatingPlaceholder = "calculating"

/*
*
render a duration in seconds as zero-padded HH:MM:SS.
anything that is not a representable duration (NaN, infinity, negative)
comes back as the "calculating" placeholder, so callers can pass through
not-yet-known estimates without special-casing them.
*/
func FormatSecondsToHHMMSS(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return CalculatingPlaceholder
	}

	totalSecs := int64(seconds)
	hours := totalSecs / 3600
	mins := (totalSecs % 3600) / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, mins, secs)
}

/*
*
given an estimated number of seconds remaining, returns both the remaining
time as HH:MM:SS and the estimated completion stamp. the stamp uses the
short time-only form when completion falls on the current calendar day,
otherwise the full date and time.
*/
func FormatCompletionEstimate(secondsRemaining float64, now time.Time) (string, string) {
	remaining := FormatSecondsToHHMMSS(secondsRemaining)
	if remaining == CalculatingPlaceholder {
		return CalculatingPlaceholder, CalculatingPlaceholder
	}

	completesAt := now.Add(time.Duration(secondsRemaining * float64(time.Second)))

	nowYear, nowMonth, nowDay := now.Date()
	endYear, endMonth, endDay := completesAt.Date()

	var stamp string
	if nowYear == endYear && nowMonth == endMonth && nowDay == endDay {
		stamp = completesAt.Format("15:04:05")
	} else {
		stamp = completesAt.Format("Mon Jan 2 2006 15:04:05")
	}
	return remaining, stamp
}
