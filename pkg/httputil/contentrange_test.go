package httputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatContentRange(t *testing.T) {
	assert.Equal(t, "0-9/25", FormatContentRange(0, 10, 25))
	assert.Equal(t, "10-19/25", FormatContentRange(10, 10, 25))
	assert.Equal(t, "20-24/25", FormatContentRange(20, 5, 25))
	assert.Equal(t, "0-0/0", FormatContentRange(0, 0, 0))
	assert.Equal(t, "0-0/1", FormatContentRange(0, 1, 1))
}

func TestParseContentRangeTotal(t *testing.T) {
	assert.Equal(t, 25, ParseContentRangeTotal("0-9/25"))
	assert.Equal(t, 25, ParseContentRangeTotal("20-24/25"))
	assert.Equal(t, 1200, ParseContentRangeTotal("0-0/ 1200"))
	assert.Equal(t, 0, ParseContentRangeTotal(""))
	assert.Equal(t, 0, ParseContentRangeTotal("garbage"))
	assert.Equal(t, 0, ParseContentRangeTotal("0-9/"))
	assert.Equal(t, 0, ParseContentRangeTotal("0-9/notanumber"))
	assert.Equal(t, 0, ParseContentRangeTotal("0-9/-3"))
}

func TestContentRange_RoundTrip(t *testing.T) {
	header := FormatContentRange(10, 10, 25)
	assert.Equal(t, 25, ParseContentRangeTotal(header))
}
