package server

import (
	"fmt"
	"time"

	"github.com/existflow/ironclock/internal/model"
	"github.com/labstack/echo/v4"
)

// parseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates in loc
func parseTime(value string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	t, err = time.ParseInLocation(model.DateLayout, value, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid time %q: use RFC 3339 or YYYY-MM-DD", value)
	}
	return t, true, nil
}

// rangeParams reads the start and end query parameters as a [start, end)
// range. A date given as end includes that whole day. Missing values default
// to the days days ending today.
func (s *Server) rangeParams(c echo.Context, days int) (time.Time, time.Time, error) {
	loc := s.engine.Location()
	year, month, day := s.engine.Now().In(loc).Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, loc)

	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	if v := c.QueryParam("start"); v != "" {
		t, _, err := parseTime(v, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if v := c.QueryParam("end"); v != "" {
		t, dateOnly, err := parseTime(v, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		end = t
	}
	return start, end, nil
}
