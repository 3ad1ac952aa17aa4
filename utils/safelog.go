// Safe logging: guest data (emails, phone numbers) must not end up in
// production log output. In development everything passes through untouched.
package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
)

var IsProduction = os.Getenv("GIN_MODE") == "release" ||
	os.Getenv("ENVIRONMENT") == "production" ||
	os.Getenv("ENV") == "production"

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRegex = regexp.MustCompile(`(\+\d{1,3}[\s.-]?)?\(?\d{2,4}\)?[\s.-]?\d{2,4}[\s.-]?\d{2,4}[\s.-]?\d{0,4}`)
	uuidRegex  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskString masks guest-identifying data in a string when running in
// production.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := emailRegex.ReplaceAllString(input, "***@***.***")
	result = phoneRegex.ReplaceAllString(result, "***-***")
	result = uuidRegex.ReplaceAllStringFunc(result, func(id string) string {
		return id[:8] + "..."
	})
	return result
}

// MaskEmail keeps the first character and the domain so logs stay
// correlatable without exposing the address.
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	m := emailRegex.FindString(email)
	if m == "" {
		return email
	}
	at := 0
	for i, c := range m {
		if c == '@' {
			at = i
			break
		}
	}
	if at <= 1 {
		return "***" + m[at:]
	}
	return m[:1] + "***" + m[at:]
}

// SafeLogf is Printf with masking applied to the formatted result.
func SafeLogf(format string, args ...any) {
	log.Print(MaskString(fmt.Sprintf(format, args...)))
}
