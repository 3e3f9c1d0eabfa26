package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	naturaldate "github.com/tj/go-naturaldate"

	"github.com/naka-gawa/repo-digest/internal/domain"
)

const dateFormat = "2006-01-02"

// nowWords resolve to the reference time itself, so an unchanged result from
// the natural language parser is expected for them and only for them.
var nowWords = map[string]bool{"now": true, "today": true, "right now": true}

// boundary snaps a resolved day to one edge of the window.
type boundary func(time.Time) time.Time

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// ParseWindow turns the --since/--until flag values into a digest window.
// Values are YYYY-MM-DD or natural language ("yesterday", "2 weeks ago");
// an empty until means today and an empty since means one frequency period
// before today. The window covers whole days on both ends.
func ParseWindow(sinceStr, untilStr string, freq Frequency, now time.Time) (domain.Window, error) {
	today := dayStart(now)

	start, err := resolveDay("--since", sinceStr, today.AddDate(0, 0, -freq.Days()), now, dayStart)
	if err != nil {
		return domain.Window{}, err
	}
	end, err := resolveDay("--until", untilStr, today, now, dayEnd)
	if err != nil {
		return domain.Window{}, err
	}

	w := domain.Window{Start: start, End: end}
	if w.Start.After(w.End) {
		return domain.Window{}, fmt.Errorf("--since (%s) must be before --until (%s)",
			w.Start.Format(dateFormat), w.End.Format(dateFormat))
	}
	return w, nil
}

func resolveDay(flag, value string, fallback, now time.Time, snap boundary) (time.Time, error) {
	if value == "" {
		return snap(fallback), nil
	}
	t, err := parseDate(value, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value %q: %w", flag, value, err)
	}
	return snap(t), nil
}

// parseDate accepts YYYY-MM-DD, then falls back to go-naturaldate relative
// to ref. The parser hands back ref for input it cannot read, so that result
// is rejected unless the input means "now".
func parseDate(s string, ref time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation(dateFormat, s, ref.Location()); err == nil {
		return t, nil
	}
	t, err := naturaldate.Parse(s, ref)
	if err != nil {
		return time.Time{}, err
	}
	if t.Equal(ref) && !nowWords[strings.ToLower(strings.TrimSpace(s))] {
		return time.Time{}, errors.New(`unrecognized date, use YYYY-MM-DD or an expression like "3 days ago"`)
	}
	return t, nil
}
