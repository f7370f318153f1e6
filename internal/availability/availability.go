// Package availability turns raw bed counts into the status labels,
// percentages and display hints shown to patients.
package availability

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"time"
)

// Status is the derived availability label of one bed category
type Status string

const (
	StatusNone        Status = "none"
	StatusGood        Status = "good"
	StatusLimited     Status = "limited"
	StatusVeryLimited Status = "very_limited"
	StatusFull        Status = "full"
)

// Derive maps available/total to a status. A zero or negative total is
// always StatusNone, whatever the available count.
func Derive(available, total int) Status {
	if total <= 0 {
		return StatusNone
	}
	pct := float64(available) / float64(total) * 100
	switch {
	case pct >= 50:
		return StatusGood
	case pct >= 20:
		return StatusLimited
	case pct > 0:
		return StatusVeryLimited
	default:
		return StatusFull
	}
}

// Denominator returns capacity, or available when no capacity is recorded
func Denominator(available, capacity int) int {
	if capacity == 0 {
		return available
	}
	return capacity
}

// Triple is the {available, total, status} view of one bed category
type Triple struct {
	Available int    `json:"available"`
	Total     int    `json:"total"`
	Status    Status `json:"status"`
}

// Bed builds a Triple from stored available and capacity counts
func Bed(available, capacity int) Triple {
	total := Denominator(available, capacity)
	return Triple{
		Available: available,
		Total:     total,
		Status:    Derive(available, total),
	}
}

// Percentage returns available as a percentage of total, one decimal
func Percentage(available, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(available)/float64(total)*1000) / 10
}

// PlaceholderDistance is a stable stand-in distance in km keyed by id.
// It is not geographic.
func PlaceholderDistance(id uint) float64 {
	return math.Round((2.0+float64(hashString(strconv.FormatUint(uint64(id), 10))%50)/10)*10) / 10
}

const (
	baseLatitude  = 19.0760
	baseLongitude = 72.8777
)

// PlaceholderCoordinates offsets a fixed base point by a city hash for
// hospitals without stored coordinates
func PlaceholderCoordinates(city string) (float64, float64) {
	offset := float64(hashString(strings.ToLower(city))%1000) / 10000
	return baseLatitude + offset, baseLongitude + offset
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// RelativeLabel renders how long ago updatedAt was, relative to now
func RelativeLabel(now, updatedAt time.Time) string {
	diff := now.Sub(updatedAt)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff/time.Hour), "hour")
	default:
		return plural(int(diff/(24*time.Hour)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
