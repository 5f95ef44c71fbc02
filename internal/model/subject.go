package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an RGBA color with components in [0,1]
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Hex returns the color as #rrggbb, ignoring alpha
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

// ParseHexColor parses #rgb or #rrggbb into an opaque Color
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
		A: 1,
	}, nil
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Subject is a course or area a task can be filed under
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// FindSubject returns the subject with the given id. Tasks may point at
// subjects that were deleted; callers treat a miss as "no subject".
func FindSubject(subjects []Subject, id *string) (Subject, bool) {
	if id == nil {
		return Subject{}, false
	}
	for _, s := range subjects {
		if s.ID == *id {
			return s, true
		}
	}
	return Subject{}, false
}
