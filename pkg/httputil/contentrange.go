package httputil

import (
	"fmt"
	"strconv"
	"strings"
)

// ContentRangeHeader is the response header carrying the pagination signal for
// admin list endpoints, in the form "<start>-<end>/<total>". The total count
// travels out-of-band from the record payload; both the server handler and the
// resource protocol client go through these two functions so the format cannot
// drift between them.
const ContentRangeHeader = "Content-Range"

// FormatContentRange renders the pagination signal for a page starting at
// offset `start` containing `count` records out of `total`.
func FormatContentRange(start, count, total int) string {
	end := start + count - 1
	if count == 0 {
		end = start
	}
	return fmt.Sprintf("%d-%d/%d", start, end, total)
}

// ParseContentRangeTotal extracts the total count from a Content-Range header
// value. A missing or malformed header yields 0, never an error: callers treat
// the total strictly as a side-channel signal.
func ParseContentRangeTotal(header string) int {
	if header == "" {
		return 0
	}
	parts := strings.SplitN(header, "/", 2)
	if len(parts) != 2 {
		return 0
	}
	total, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || total < 0 {
		return 0
	}
	return total
}
