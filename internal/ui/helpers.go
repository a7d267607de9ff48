package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/shelf/internal/catalog"
)

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// truncate shortens value to limit runes, ending in an ellipsis when cut.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return string(runes[:1])
	}
	return string(runes[:limit-1]) + "…"
}

// padRight pads or cuts value to exactly width runes.
func padRight(value string, width int) string {
	value = truncate(value, width)
	if n := len([]rune(value)); n < width {
		value += strings.Repeat(" ", width-n)
	}
	return value
}

// padLeft right-aligns value in width runes.
func padLeft(value string, width int) string {
	value = truncate(value, width)
	if n := len([]rune(value)); n < width {
		value = strings.Repeat(" ", width-n) + value
	}
	return value
}

func formatPrice(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', 2, 64)
}

func formatRating(r *catalog.Rating) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f (%d)", r.Rate, r.Count)
}

// categoryLabel names a filter for display; the empty filter is "all".
func categoryLabel(category string) string {
	if strings.TrimSpace(category) == "" {
		return "all"
	}
	return category
}

// classifyError maps an operation error to a short banner.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case errors.Is(err, catalog.ErrBadStatus):
		return "API ERROR"
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case errors.Is(err, catalog.ErrUnavailable):
		return "UNREACHABLE"
	default:
		return "ERROR"
	}
}

// nextCategory returns the filter after current in the cycle all → names... →
// all. An unknown current restarts the cycle at the first name.
func nextCategory(current string, names []string) string {
	if len(names) == 0 {
		return ""
	}
	if current == "" {
		return names[0]
	}
	for i, name := range names {
		if name == current {
			if i+1 < len(names) {
				return names[i+1]
			}
			return ""
		}
	}
	return names[0]
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
