package util

import (
    "regexp"
    "time"
)

// Date8Layout is the provider's 8-digit calendar date format.
const Date8Layout = "20060102"

var date8Pattern = regexp.MustCompile(`^\d{8}$`)

// ParseDate8 parses a YYYYMMDD string. Returns (t, true) only for a real calendar date.
func ParseDate8(s string) (time.Time, bool) {
    if !date8Pattern.MatchString(s) {
        return time.Time{}, false
    }
    t, err := time.Parse(Date8Layout, s)
    if err != nil {
        return time.Time{}, false
    }
    return t, true
}

// FormatDate8 renders t as YYYYMMDD.
func FormatDate8(t time.Time) string {
    return t.Format(Date8Layout)
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
    // day 0 of the next month is the last day of this one
    return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns the first and last YYYYMMDD of a month.
func MonthBounds(year int, month time.Month) (string, string) {
    first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
    last := time.Date(year, month, DaysIn(year, month), 0, 0, 0, 0, time.UTC)
    return FormatDate8(first), FormatDate8(last)
}

// YearMonth is a calendar month.
type YearMonth struct {
    Year  int
    Month time.Month
}

// MonthsBetween lists every month touched by [from, to], ascending.
func MonthsBetween(from, to time.Time) []YearMonth {
    if to.Before(from) {
        return nil
    }
    var out []YearMonth
    cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
    end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
    for !cur.After(end) {
        out = append(out, YearMonth{Year: cur.Year(), Month: cur.Month()})
        cur = cur.AddDate(0, 1, 0)
    }
    return out
}
