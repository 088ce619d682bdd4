package domain

import "strings"

// quoteStripper removes identifier quoting characters. MySQL uses backticks,
// PostgreSQL and SQLite use double quotes.
var quoteStripper = strings.NewReplacer("`", "", `"`, "")

// Normalize canonicalizes SQL text for pattern matching: identifier quotes are
// removed, whitespace runs collapse to a single space, the text is lowercased
// and trimmed. Normalize is idempotent. The result is only used for checks,
// never executed.
func Normalize(sql string) string {
	sql = quoteStripper.Replace(sql)
	sql = strings.Join(strings.Fields(sql), " ")
	return strings.ToLower(sql)
}
