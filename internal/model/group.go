package model

// LogicGroup is a deterministic bucket of records sharing the same
// (rule id, signature, template) triple. It exclusively owns Members;
// a record belongs to exactly one group.
type LogicGroup struct {
	RuleID    string
	Signature string // masked-variable fingerprint, e.g. "pipe_* / clk_*"
	Template  string
	Count     int
	Members   []ParsedRecord
}

// SuperGroup is the AI stage's output: one or more LogicGroups judged
// semantically equivalent, presented as a single issue.
type SuperGroup struct {
	RuleID                 string
	RepresentativeTemplate string
	RepresentativePattern  string
	TotalCount             int      // sum of member LogicGroup counts
	MergedVariantsCount    int      // number of LogicGroups folded in, >= 1
	OriginalLogs           []string // raw text of every underlying record, discovery order
}
