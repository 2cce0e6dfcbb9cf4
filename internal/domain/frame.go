package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Frame is a print size a visitor can choose, with its price and the pixel
// dimensions the camera preview is negotiated at.
type Frame struct {
	Key    string
	Label  string
	Price  decimal.Decimal
	Width  int
	Height int
}

type FrameCatalog map[string]Frame

func NewFrameCatalog(frames ...Frame) FrameCatalog {
	c := make(FrameCatalog, len(frames))
	for _, f := range frames {
		c[f.Key] = f
	}
	return c
}

// DefaultFrameCatalog is used when the configuration does not define frames.
func DefaultFrameCatalog() FrameCatalog {
	return NewFrameCatalog(
		Frame{Key: "frame1", Label: "7 cm x 10 cm", Price: decimal.RequireFromString("10.00"), Width: 832, Height: 1184},
		Frame{Key: "frame2", Label: "14 cm x 10 cm", Price: decimal.RequireFromString("20.00"), Width: 1664, Height: 1184},
	)
}

func (c FrameCatalog) Lookup(key string) (Frame, error) {
	if key == "" {
		return Frame{}, NewMissingRequiredFieldError("frame selection")
	}
	f, ok := c[key]
	if !ok {
		return Frame{}, NewValidationError("unknown frame %q", key)
	}
	return f, nil
}

func (c FrameCatalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
