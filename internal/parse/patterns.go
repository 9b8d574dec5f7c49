package parse

import "regexp"

// Line-shape patterns for sign-off constraint reports. The report format
// interleaves a per-severity summary, per-rule parent lines, and indented
// instance lines; indentation and field counts are the only grammar.
var (
	// varPattern captures single-quoted variable spans in a message.
	varPattern = regexp.MustCompile(`'(.*?)'`)

	// numPattern matches standalone integer runs (word-boundary delimited).
	numPattern = regexp.MustCompile(`\b\d+\b`)

	// separatorPattern matches ruler lines made of '*', '=' or '-' only.
	separatorPattern = regexp.MustCompile(`^\s*[*=-]+\s*$`)

	// severityPattern matches a severity section header: a known severity
	// word at little or no indentation followed by count and waived
	// columns and nothing else. The trailing anchor keeps prose like
	// "error handling is important" from opening a section.
	severityPattern = regexp.MustCompile(`(?i)^\s{0,4}(fatal|error|warning|info)\s+\d+\s+\d+\s*$`)

	// rulePattern matches a parent rule line: a short all-caps rule code
	// at limited indentation, its count and waived columns, then the rule
	// message. Requiring leading indentation rejects prose that merely
	// mentions a rule code at column zero.
	rulePattern = regexp.MustCompile(`^\s{1,6}([A-Z][A-Z0-9_]{2,15})\s+\d+\s+\d+\s+\S`)

	// instancePattern matches one concrete violation: "<n> of <m> <waived>
	// <message>". Anchoring the counter at the start of the line keeps
	// summary prose ("Total: 4 of 46 rules violated") out.
	instancePattern = regexp.MustCompile(`^\s*(\d+)\s+of\s+(\d+)\s+(\d+)\s+(\S.*)$`)

	// counterPattern is the looser instance marker used by the legacy
	// two-file mode, where the caller strips the counter fields itself.
	counterPattern = regexp.MustCompile(`\b\d+\s+of\s+\d+\b`)
)
