package logging

import "regexp"

// Secret-bearing patterns that must never reach the log output. Provider
// error messages can echo request headers, so everything the engine logs
// from an adapter goes through Redact first.
var redactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(authorization:\s*bearer\s+)[a-zA-Z0-9\-\._~\+/=]+`),
	regexp.MustCompile(`(?i)(api[_-]?key["'=:\s]+)[a-zA-Z0-9\-\._~\+/=]+`),
	regexp.MustCompile(`(?i)(token["'=:\s]+)[a-zA-Z0-9\-\._~\+/=]+`),
	regexp.MustCompile(`(?i)(cookie["'=:\s]+)[^;\s]+`),
}

// Redact replaces credential material in a message with a placeholder
func Redact(input string) string {
	output := input
	for _, pattern := range redactPatterns {
		output = pattern.ReplaceAllString(output, "${1}[REDACTED]")
	}
	return output
}
