// Package core holds the movement domain: types, validation, month
// bucketing and statistics value objects. It has no dependencies on
// storage or transports.
package core

import (
	"regexp"
	"time"
)

const monthKeyLayout = "2006-01"

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// MonthKeyFor derives the canonical "YYYY-MM" reference bucket from a
// date. Total over all valid dates.
func MonthKeyFor(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// CurrentMonthKey returns the bucket of the current calendar month.
func CurrentMonthKey() string {
	return MonthKeyFor(time.Now())
}

// IsValidMonthKey reports whether s is exactly four digits, a dash and
// two digits. Callers substitute the current month for malformed
// filters instead of failing the request.
func IsValidMonthKey(s string) bool {
	return monthKeyPattern.MatchString(s)
}

var monthNames = map[string]string{
	"01": "Janvier", "02": "Février", "03": "Mars", "04": "Avril",
	"05": "Mai", "06": "Juin", "07": "Juillet", "08": "Août",
	"09": "Septembre", "10": "Octobre", "11": "Novembre", "12": "Décembre",
}

// MonthLabel formats a month key as a French label, e.g. "Mars 2024".
// Unknown month numbers render as "Mois inconnu".
func MonthLabel(key string) string {
	if !IsValidMonthKey(key) {
		return key
	}
	year, month := key[:4], key[5:]
	name, ok := monthNames[month]
	if !ok {
		name = "Mois inconnu"
	}
	return name + " " + year
}
