package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var errMalformedCursor = errors.New("malformed cursor")

// Cursor is the last row of a page in (sale date desc, id desc) order.
type Cursor struct {
	Date time.Time
	ID   int64
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer is the row count to query so a next page can be detected.
func LimitWithBuffer(limit int) int { return NormalizeLimit(limit) + 1 }

// Trim cuts rows fetched with LimitWithBuffer down to the page and returns
// the last kept row when more rows follow.
func Trim[T any](rows []T, limit int) (page []T, last *T) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, nil
	}
	return rows[:limit], &rows[limit-1]
}

// EncodeCursor renders c as an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	raw := c.Date.Format(time.DateOnly) + "|" + strconv.FormatInt(c.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor reverses EncodeCursor. A blank token means the first page.
func ParseCursor(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedCursor, err)
	}
	date, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil, errMalformedCursor
	}
	c := Cursor{}
	if c.Date, err = time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("%w: date %q", errMalformedCursor, date)
	}
	if c.ID, err = strconv.ParseInt(id, 10, 64); err != nil || c.ID <= 0 {
		return nil, fmt.Errorf("%w: id %q", errMalformedCursor, id)
	}
	return &c, nil
}
