package logger

import "time"

// Took is the millisecond-rounded time elapsed since start.
func Took(start time.Time) time.Duration { return RoundMS(time.Since(start)) }

// RoundMS rounds d to whole milliseconds; negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Millis reports d as whole milliseconds for *_ms attributes.
func Millis(d time.Duration) int64 { return RoundMS(d).Milliseconds() }
