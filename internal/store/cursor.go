package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is a keyset position over (created_at DESC, id DESC).
type Cursor struct {
	Time time.Time
	ID   string
}

func (c Cursor) IsZero() bool {
	return c.Time.IsZero() && c.ID == ""
}

// Before reports whether a row at (t, id) sorts after the cursor, i.e. it
// belongs on the next page.
func (c Cursor) Before(t time.Time, id string) bool {
	if c.IsZero() {
		return true
	}
	return t.Before(c.Time) || (t.Equal(c.Time) && id < c.ID)
}

// ParseCursor decodes "<unixnano>:<id>". The empty string is the first page.
func ParseCursor(raw string) (Cursor, error) {
	if raw == "" {
		return Cursor{}, nil
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return Cursor{}, fmt.Errorf("%w: format", ErrInvalidCursor)
	}
	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: timestamp", ErrInvalidCursor)
	}
	if parts[1] == "" {
		return Cursor{}, fmt.Errorf("%w: id", ErrInvalidCursor)
	}
	return Cursor{Time: time.Unix(0, n).UTC(), ID: parts[1]}, nil
}

func EncodeCursor(ts time.Time, id string) string {
	return fmt.Sprintf("%d:%s", ts.UTC().UnixNano(), id)
}
