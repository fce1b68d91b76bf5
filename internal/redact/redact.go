// Package redact strips credentials, SQL and file system details from error
// text before it is written to logs. Storage and broker errors routinely embed
// connection strings and statements, and none of that belongs in a log line
// or an API response.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	PathPlaceholder       = "[REDACTED_PATH]"
	StackTracePlaceholder = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; the stack trace rule goes first because it swallows
// everything after it.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*`),
		replacement: StackTracePlaceholder,
	},
	{
		// userinfo of postgres and redis URLs
		pattern:     regexp.MustCompile(`(?i)\b(postgres|postgresql|redis|rediss)://[^@\s/]*@`),
		replacement: "${1}://" + CredentialPlaceholder + "@",
	},
	{
		pattern:     regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]+['"]?`),
		replacement: "${1}=" + CredentialPlaceholder,
	},
	{
		// statements as the stores write them, upper-case keywords only
		pattern:     regexp.MustCompile(`\b(?:SELECT|INSERT INTO|UPDATE|DELETE FROM)\s[^;\n]*`),
		replacement: SQLPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(/[\w.-]+){2,}`),
		replacement: PathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.replacement)
	}
	return input
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
