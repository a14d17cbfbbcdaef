package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$3,650", 3650},
		{"N7,300.50", 7300.50},
		{"450 sqm", 450},
		{"1.5.2", 1.52}, // second dot dropped
		{"contact agent", 0},
		{"", 0},
		{"  $ 12 000 ", 12000},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NumericValue(c.in), "input %q", c.in)
	}
}

func TestRelativeDiff(t *testing.T) {
	assert.InDelta(t, 0.0, RelativeDiff(100, 100), 0.0001)
	assert.InDelta(t, 0.5, RelativeDiff(50, 100), 0.0001)
	assert.InDelta(t, 0.5, RelativeDiff(100, 50), 0.0001)
	// Non-positive values disable band matching.
	assert.Equal(t, 1.0, RelativeDiff(0, 100))
	assert.Equal(t, 1.0, RelativeDiff(100, 0))
	assert.Equal(t, 1.0, RelativeDiff(-5, 100))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ada@example.com"))
	assert.True(t, IsValidEmail("a.b+c@sub.domain.co"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("a b@example.com"))
	assert.False(t, IsValidEmail("missing@tld"))
	assert.False(t, IsValidEmail(""))
}
