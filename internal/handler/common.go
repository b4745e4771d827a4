package handler // handler defines http handlers

import (
	"errors"  // errors provides the sentinel used in getOrganiserID
	"strconv" // strconv converts strings to numeric types
	"strings" // strings trims token claims before parsing

	"github.com/labstack/echo/v4" // echo defines request context types
)

// getOrganiserID extracts the organiser_id from echo.Context and converts
// it to uint64.  JWTAuth stores the claim as whatever type the JSON
// decoder produced, so several representations are accepted.
func getOrganiserID(c echo.Context) (uint64, error) {
	v := c.Get("organiser_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid organiser_id in context")
}

// parseUint wraps strconv for the claim formats seen in tokens.
func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
