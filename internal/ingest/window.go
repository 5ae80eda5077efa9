package ingest

import (
	"fmt"
	"time"
)

const clockLayout = "15:04"

// Window is an inclusive time-of-day range with minute precision.
type Window struct {
	Start time.Duration // offset from midnight
	End   time.Duration
}

// DefaultWindow is 07:00 to 22:29 inclusive.
var DefaultWindow = Window{Start: 7 * time.Hour, End: 22*time.Hour + 29*time.Minute}

// ParseWindow builds a Window from two HH:MM strings.
func ParseWindow(start, end string) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, err
	}
	if e < s {
		return Window{}, fmt.Errorf("%w: %s is before %s", ErrInvalidWindow, end, start)
	}
	return Window{Start: s, End: e}, nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidWindow, v)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Contains reports whether the time-of-day of ts lies within the window.
func (w Window) Contains(ts time.Time) bool {
	tod := time.Duration(ts.Hour())*time.Hour +
		time.Duration(ts.Minute())*time.Minute +
		time.Duration(ts.Second())*time.Second +
		time.Duration(ts.Nanosecond())
	return tod >= w.Start && tod <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		int(w.Start.Hours()), int(w.Start.Minutes())%60,
		int(w.End.Hours()), int(w.End.Minutes())%60)
}
