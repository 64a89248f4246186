package queue

import (
	"fmt"
	"math"
	"time"

	"github.com/rpggio/starbase/internal/domain/catalog"
)

// IdentityKey scopes a pending item. Technology and defense keys carry no nonce, so an
// empire can have one pending item per key at a base. Unit keys append the start time in
// nanoseconds so identical ships can be queued side by side.
func IdentityKey(category catalog.Category, empireID, coord, itemKey string, startedAt time.Time) string {
	base := fmt.Sprintf("%s:%s:%s:%s", category, empireID, coord, itemKey)
	if category == catalog.CategoryUnit {
		return fmt.Sprintf("%s:%d", base, startedAt.UnixNano())
	}
	return base
}

// ETAMinutes converts a cost and an hourly capacity into whole minutes, at least one.
func ETAMinutes(cost int64, ratePerHour float64) int64 {
	if ratePerHour <= 0 {
		return 0
	}
	hours := float64(cost) / ratePerHour
	minutes := int64(math.Ceil(hours * 60))
	if minutes < 1 {
		return 1
	}
	return minutes
}
