// internal/lead/phone.go
package lead

import (
	"fmt"
	"regexp"
	"strings"
)

// Indonesian mobile numbers in local (08...), bare country-code (628...) or
// international (+628...) form, 9 to 15 digits total.
var (
	separatorPattern = regexp.MustCompile(`[\s\-().]`)
	digitsPattern    = regexp.MustCompile(`^\+?\d{9,15}$`)
	handlePattern    = regexp.MustCompile(`^(08\d{8,11}|628\d{8,11}|\+628\d{8,11})$`)
)

// NormalizeHandle strips separators, validates the handle as an Indonesian
// mobile number and canonicalizes it to the +62 international form so every
// stored record shares one format. Normalization is idempotent.
func NormalizeHandle(raw string) (string, error) {
	c := separatorPattern.ReplaceAllString(strings.TrimSpace(raw), "")
	if !digitsPattern.MatchString(c) {
		return "", fmt.Errorf("handle %q is not a 9-15 digit phone number", raw)
	}
	if !handlePattern.MatchString(c) {
		return "", fmt.Errorf("handle %q is not an Indonesian mobile number", raw)
	}

	switch {
	case strings.HasPrefix(c, "08"):
		return "+62" + c[1:], nil
	case strings.HasPrefix(c, "628"):
		return "+" + c, nil
	default:
		return c, nil
	}
}

// IsValidHandle reports whether raw would pass NormalizeHandle.
func IsValidHandle(raw string) bool {
	_, err := NormalizeHandle(raw)
	return err == nil
}
