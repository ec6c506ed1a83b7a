// Package present turns API payloads into what the CLI prints.
package present

// PageWindowSize is how many page numbers are offered at once
const PageWindowSize = 5

// PageWindow returns the zero-based page numbers [start, end) to offer around
// page, keeping the window full near either end when possible
func PageWindow(page, totalPages int) (start, end int) {
	if totalPages <= 0 {
		return 0, 0
	}
	start = max(0, page-PageWindowSize/2)
	end = min(totalPages, start+PageWindowSize)
	if end-start < PageWindowSize {
		start = max(0, end-PageWindowSize)
	}
	return start, end
}

// ClampPage keeps page within [0, totalPages-1]
func ClampPage(page, totalPages int) int {
	if totalPages <= 0 || page < 0 {
		return 0
	}
	return min(page, totalPages-1)
}
