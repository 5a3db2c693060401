package content

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
)

var (
	reYear      = regexp.MustCompile(`^(?:c\.\s*)?(\d{4})s?$`)
	reMonthYear = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{4})$`)
)

var months = map[string]string{
	"january": "01", "february": "02", "march": "03", "april": "04",
	"may": "05", "june": "06", "july": "07", "august": "08",
	"september": "09", "october": "10", "november": "11", "december": "12",
}

// normalizeDate converts the human dates used on timeline entries ("1853",
// "September 1853", "20 September 1853", "20/09/1853", "1853-09-20") to ISO 8601. Values it
// cannot read precisely (ranges, decades) yield "".
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := reYear.FindStringSubmatch(s); m != nil {
		if strings.HasSuffix(s, "s") {
			return ""
		}
		return m[1]
	}
	if m := reMonthYear.FindStringSubmatch(s); m != nil {
		if mm, ok := months[strings.ToLower(m[1])]; ok {
			return m[2] + "-" + mm
		}
		return ""
	}
	// Numeric dates are written day first on this site.
	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
