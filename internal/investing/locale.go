package investing

import (
	"fmt"
	"strconv"
	"strings"
)

// Locale describes how a regional Investing.com site formats its
// historical-data table.
type Locale struct {
	// DateLayouts are tried in order when parsing the date column
	DateLayouts []string
	// DateHeaders and CloseHeaders name the columns to read
	DateHeaders  []string
	CloseHeaders []string
	// DecimalSep and GroupSep describe the number format, e.g. "1.234,56"
	DecimalSep string
	GroupSep   string
}

// Locales supported by the adapter, keyed by config name
var Locales = map[string]Locale{
	"en": {
		DateLayouts:  []string{"01/02/2006", "Jan 02, 2006"},
		DateHeaders:  []string{"date"},
		CloseHeaders: []string{"price", "close"},
		DecimalSep:   ".",
		GroupSep:     ",",
	},
	"de": {
		DateLayouts:  []string{"02.01.2006"},
		DateHeaders:  []string{"datum"},
		CloseHeaders: []string{"zuletzt", "schluss"},
		DecimalSep:   ",",
		GroupSep:     ".",
	},
}

// LookupLocale returns the named locale.
func LookupLocale(name string) (Locale, error) {
	l, ok := Locales[strings.ToLower(name)]
	if !ok {
		return Locale{}, fmt.Errorf("unknown investing locale %q", name)
	}
	return l, nil
}

// ParseNumber parses a locale-formatted decimal such as "1.234,56".
func (l Locale) ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	if l.GroupSep != "" {
		s = strings.ReplaceAll(s, l.GroupSep, "")
	}
	if l.DecimalSep != "" && l.DecimalSep != "." {
		s = strings.ReplaceAll(s, l.DecimalSep, ".")
	}
	return strconv.ParseFloat(s, 64)
}

func (l Locale) isDateHeader(h string) bool {
	return containsFold(l.DateHeaders, h)
}

func (l Locale) isCloseHeader(h string) bool {
	return containsFold(l.CloseHeaders, h)
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
