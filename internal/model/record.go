package model

// NoVar is the sentinel stored as the sole variable of a record whose
// message carries no quoted variables.
const NoVar = "NO_VAR"

// ParsedRecord is one violation instance extracted from a report line.
type ParsedRecord struct {
	RuleID    string   // violated rule, or "UNKNOWN"/"UNKNOWN_<hash>" without context
	Variables []string // quoted tokens in message order; [NoVar] when none
	Template  string   // message with variables and numbers masked out
	RawText   string   // original message text, kept for evidence display
	Severity  string   // lower-cased severity name, or "unknown"
}
