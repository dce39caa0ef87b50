// Package timewindow converts local wall-clock ranges into absolute UTC
// intervals. Every range query against enterprise telemetry goes through
// here so that DST rules and historical offsets of the enterprise's zone
// are applied exactly once.
package timewindow

import (
	"errors"
	"time"
)

// Layout is the wall-clock pattern callers must use. Inputs carry no
// offset; the zone argument supplies it.
const Layout = "2006-01-02T15:04"

var (
	ErrInvalidTimeFormat = errors.New("time must match YYYY-MM-DDTHH:MM")
	ErrInvalidZone       = errors.New("unknown IANA timezone identifier")
)

// ToUTCRange interprets localStart and localEnd as wall-clock times in the
// given IANA zone and returns the corresponding UTC instants.
//
// An inverted range (start after end) is returned as-is: downstream range
// queries simply match nothing. That mirrors how callers already use these
// windows and keeps "empty window" distinct from "bad input".
func ToUTCRange(localStart, localEnd, zone string) (time.Time, time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidZone
	}

	start, err := time.ParseInLocation(Layout, localStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidTimeFormat
	}
	end, err := time.ParseInLocation(Layout, localEnd, loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidTimeFormat
	}

	return start.UTC(), end.UTC(), nil
}
