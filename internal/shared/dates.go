package shared

import "time"

const (
	apiDateLayout     = "2006-01-02"
	displayDateLayout = "02-01-2006"
)

// ToDisplayDate converts an API-form date (YYYY-MM-DD) to display form
// (DD-MM-YYYY). Unparseable input passes through unchanged.
func ToDisplayDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(apiDateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(displayDateLayout)
}

// ToAPIDate converts a display-form date (DD-MM-YYYY) to API form
// (YYYY-MM-DD). Unparseable input passes through unchanged.
func ToAPIDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(displayDateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(apiDateLayout)
}
