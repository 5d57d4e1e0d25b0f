package risk

import (
	"fmt"
	"time"
)

const monthLayout = "Jan 2006"

// Month is a calendar month bucket. Two transactions share a bucket iff they
// share calendar month and year in the aggregator's location.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time, loc *time.Location) Month {
	local := t.In(loc)
	return Month{Year: local.Year(), Month: local.Month()}
}

// ParseMonth parses labels such as "Jan 2026".
func ParseMonth(label string) (Month, error) {
	t, err := time.Parse(monthLayout, label)
	if err != nil {
		return Month{}, fmt.Errorf("parsing month %q: %w", label, err)
	}

	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(monthLayout)
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}

	return m.Month < o.Month
}
