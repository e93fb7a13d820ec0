package util

import (
    "regexp"
    "strings"
)

// SplitList splits a comma separated list, trimming blanks and dropping empties.
func SplitList(s string) []string {
    if strings.TrimSpace(s) == "" {
        return nil
    }
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

var tsCodePattern = regexp.MustCompile(`^\d{6}\.(SH|SZ|BJ)$`)

// IsTSCode reports whether s is an exchange-qualified A-share code such as 600000.SH.
func IsTSCode(s string) bool {
    return tsCodePattern.MatchString(s)
}
