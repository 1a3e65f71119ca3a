package domain

import (
	"fmt"
	"time"
)

// FormatReference builds a human-readable sale reference from a timestamp
// and the tenant's per-day sequence number, e.g. SALE-2024-0815-143022-0042.
// References are tenant-scoped by construction of the sequence but unique
// across all tenants; the reference column's unique index is the backstop.
func FormatReference(t time.Time, seq int64) string {
	return fmt.Sprintf("SALE-%d-%02d%02d-%02d%02d%02d-%04d",
		t.Year(),
		int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
		seq)
}

// DayStart returns midnight of t's day in t's location
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
