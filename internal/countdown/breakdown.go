package countdown

import (
	"fmt"
	"time"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Breakdown is a remaining duration split into display fields.
type Breakdown struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
	Millis  int64
}

// Decompose splits remaining into whole days, hours, minutes, seconds and
// milliseconds, each field taking what the previous one left over. Negative
// durations count as zero; sub-millisecond precision is dropped.
func Decompose(remaining time.Duration) Breakdown {
	ms := remaining.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	var b Breakdown
	b.Days, ms = ms/msPerDay, ms%msPerDay
	b.Hours, ms = ms/msPerHour, ms%msPerHour
	b.Minutes, ms = ms/msPerMinute, ms%msPerMinute
	b.Seconds, b.Millis = ms/msPerSecond, ms%msPerSecond
	return b
}

// Duration reassembles the breakdown.
func (b Breakdown) Duration() time.Duration {
	ms := b.Days*msPerDay + b.Hours*msPerHour + b.Minutes*msPerMinute + b.Seconds*msPerSecond + b.Millis
	return time.Duration(ms) * time.Millisecond
}

// Format renders "<days>d HH:MM:SS.mmm"; days are not padded.
func Format(b Breakdown) string {
	return fmt.Sprintf("%dd %02d:%02d:%02d.%03d", b.Days, b.Hours, b.Minutes, b.Seconds, b.Millis)
}
