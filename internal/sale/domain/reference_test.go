package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatReference(t *testing.T) {
	at := time.Date(2024, time.August, 15, 14, 30, 22, 0, time.UTC)

	assert.Equal(t, "SALE-2024-0815-143022-0042", FormatReference(at, 42))
	assert.Equal(t, "SALE-2024-0815-143022-0001", FormatReference(at, 1))
	// Sequence wider than four digits is not truncated
	assert.Equal(t, "SALE-2024-0815-143022-12345", FormatReference(at, 12345))
}

func TestFormatReferencePadding(t *testing.T) {
	at := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "SALE-2024-0102-030405-0007", FormatReference(at, 7))
}

func TestDayStart(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	at := time.Date(2024, time.August, 15, 23, 59, 59, 123, loc)

	start := DayStart(at)
	assert.Equal(t, time.Date(2024, time.August, 15, 0, 0, 0, 0, loc), start)
	assert.Equal(t, loc, start.Location())
}
