// ABOUTME: Lenient date parsing for feed timestamps gofeed could not parse
// ABOUTME: Normalizes common publisher mistakes before trying known layouts

package time

import (
	"strings"
	"time"
)

// layouts seen in feeds in the wild, most common first
var layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var replacer = strings.NewReplacer(
	"GMT+0000", "+0000",
	"Sept ", "Sep ",
	"June ", "Jun ",
	"July ", "Jul ",
)

// ParseFlexibleTime parses s, returning the zero time when no layout matches
func ParseFlexibleTime(s string) time.Time {
	s = normalize(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

// ParseWithDefault parses s, returning def when no layout matches
func ParseWithDefault(s string, def time.Time) time.Time {
	if t := ParseFlexibleTime(s); !t.IsZero() {
		return t
	}
	return def
}

func normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if strings.HasSuffix(s, " UT") {
		s = strings.TrimSuffix(s, " UT") + " GMT"
	}
	return replacer.Replace(s)
}
