package locale

import (
	"fmt"
	"time"

	"guesthouse/pkg/model"
)

// Clock answers "what day is it at the property". Age and check-in rules are
// evaluated against this day, not the server's zone.
type Clock interface {
	Now() time.Time
	Today() model.Date
}

type PropertyClock struct {
	loc *time.Location
	now func() time.Time
}

func NewPropertyClock(tz string) (*PropertyClock, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid property timezone %q: %w", tz, err)
	}
	return &PropertyClock{loc: loc, now: time.Now}, nil
}

// FixedClock always reports t. Used by tests.
func FixedClock(t time.Time) *PropertyClock {
	return &PropertyClock{loc: t.Location(), now: func() time.Time { return t }}
}

func (c *PropertyClock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *PropertyClock) Today() model.Date {
	return model.DateOf(c.Now())
}

func (c *PropertyClock) Location() *time.Location {
	return c.loc
}
