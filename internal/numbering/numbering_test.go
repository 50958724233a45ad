package numbering

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationNumber(t *testing.T) {
	assert.Equal(t, "APP2026000001", ApplicationNumber(NewApplicationPrefix, 2026, 1))
	assert.Equal(t, "REP2026000120", ApplicationNumber(ReplacementPrefix, 2026, 120))
	assert.Regexp(t, regexp.MustCompile(`^APP2026\d{6}$`), ApplicationNumber(NewApplicationPrefix, 2026, 999999))
}

func TestIDNumber(t *testing.T) {
	assert.Equal(t, "ID202600000001", IDNumber(2026, 1))
	assert.Equal(t, "ID202612345678", IDNumber(2026, 12345678))
}

func TestSequenceKey(t *testing.T) {
	assert.Equal(t, "ID2026", SequenceKey(IDNumberPrefix, 2026))
	assert.Equal(t, "REP2025", SequenceKey(ReplacementPrefix, 2025))
}

func TestSequentialNumbersIncrease(t *testing.T) {
	prev := ApplicationNumber(NewApplicationPrefix, 2026, 1)
	for seq := int64(2); seq < 50; seq++ {
		next := ApplicationNumber(NewApplicationPrefix, 2026, seq)
		assert.Greater(t, next, prev)
		prev = next
	}
}
