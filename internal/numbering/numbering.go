// Package numbering formats the human-readable identifiers the registry hands
// out: application numbers at intake and national ID numbers at approval.
package numbering

import (
	"fmt"
	"strconv"
)

const (
	// NewApplicationPrefix is used for first-time ID applications.
	NewApplicationPrefix = "APP"
	// ReplacementPrefix is used for lost-ID replacement applications.
	ReplacementPrefix = "REP"
	// IDNumberPrefix starts every generated national ID number.
	IDNumberPrefix = "ID"
)

// SequenceKey names the counter for a prefix within a year, e.g. APP2026.
func SequenceKey(prefix string, year int) string {
	return prefix + strconv.Itoa(year)
}

// ApplicationNumber formats <PREFIX><year><6-digit sequence>.
func ApplicationNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s%d%06d", prefix, year, seq)
}

// IDNumber formats ID<year><8-digit sequence>.
func IDNumber(year int, seq int64) string {
	return fmt.Sprintf("%s%d%08d", IDNumberPrefix, year, seq)
}
