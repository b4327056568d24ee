// Package schedule decides which category a scrape run covers when none is
// named explicitly, and when the next scheduled run fires.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNoCategories is returned when the rotation order is empty.
var ErrNoCategories = errors.New("no categories to rotate")

const halfHourMinute = 30

// SlotIndex returns the half-hour slot of the UTC day: 0 for 00:00-00:29,
// 1 for 00:30-00:59, up to 47 for 23:30-23:59.
func SlotIndex(now time.Time) int {
	utc := now.UTC()

	slot := utc.Hour() * 2
	if utc.Minute() >= halfHourMinute {
		slot++
	}

	return slot
}

// SelectCategory picks the category for the half-hour slot containing now.
// Consecutive slots walk the order, wrapping around.
func SelectCategory(now time.Time, order []string) (string, error) {
	if len(order) == 0 {
		return "", ErrNoCategories
	}

	return order[SlotIndex(now)%len(order)], nil
}

// NextRun returns the first time after now matched by a five-field cron spec.
func NextRun(spec string, now time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}

	return sched.Next(now.UTC()), nil
}
