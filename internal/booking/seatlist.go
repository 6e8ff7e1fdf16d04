package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-storefront/internal/seatmap"
)

// ErrInvalidSeatList is returned for a seats parameter that cannot be
// parsed into distinct seat identifiers.
var ErrInvalidSeatList = errors.New("invalid seat list")

// ParseSeatList parses the comma-separated seats parameter.  An absent or
// empty parameter is an empty selection, not an error.  Blank segments
// are ignored; malformed or repeated identifiers are rejected.
func ParseSeatList(raw string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		row, n, ok := seatmap.ParseSeatID(part)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSeatList, strings.TrimSpace(part))
		}
		id := seatmap.SeatID(row, n)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate %s", ErrInvalidSeatList, id)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// FormatSeatList is the inverse of ParseSeatList.
func FormatSeatList(ids []string) string { return strings.Join(ids, ",") }
