package ai

import (
	"strings"

	"github.com/crimson-sun/sieve/internal/cluster/logic"
	"github.com/crimson-sun/sieve/internal/model"
)

// maxAlternatives bounds a bracketed alternation; more distinct values
// than this collapse the position to a wildcard.
const maxAlternatives = 5

// MergePatterns folds the patterns of merged groups into one display
// pattern. Positions where every input agrees keep the literal segment;
// disagreeing positions become a bracketed alternation of the distinct
// values in first-seen order, or a wildcard when the alternation would
// grow past maxAlternatives.
func MergePatterns(patterns []string) string {
	if len(patterns) == 0 {
		return ""
	}
	if len(patterns) == 1 {
		return patterns[0]
	}

	allSame := true
	allNoVar := true
	for _, p := range patterns {
		if p != patterns[0] {
			allSame = false
		}
		if p != model.NoVar {
			allNoVar = false
		}
	}
	if allSame {
		return patterns[0]
	}
	if allNoVar {
		return model.NoVar
	}

	// Split into per-variable tuples. Patterns with differing variable
	// counts cannot be aligned positionally; alternate them whole.
	tuples := make([][]string, len(patterns))
	for i, p := range patterns {
		tuples[i] = strings.Split(p, logic.SignatureSeparator)
	}
	width := len(tuples[0])
	for _, t := range tuples[1:] {
		if len(t) != width {
			return alternation(patterns)
		}
	}

	merged := make([]string, width)
	for pos := 0; pos < width; pos++ {
		values := make([]string, len(tuples))
		for i, t := range tuples {
			values[i] = t[pos]
		}
		merged[pos] = mergeValues(values)
	}
	return strings.Join(merged, logic.SignatureSeparator)
}

// mergeValues merges one variable position across all patterns,
// comparing '/'-delimited path segments positionally.
func mergeValues(values []string) string {
	same := true
	for _, v := range values[1:] {
		if v != values[0] {
			same = false
			break
		}
	}
	if same {
		return values[0]
	}

	segs := make([][]string, len(values))
	for i, v := range values {
		segs[i] = strings.Split(v, "/")
	}
	depth := len(segs[0])
	for _, s := range segs[1:] {
		if len(s) != depth {
			return alternation(values)
		}
	}

	out := make([]string, depth)
	for pos := 0; pos < depth; pos++ {
		segValues := make([]string, len(segs))
		for i, s := range segs {
			segValues[i] = s[pos]
		}
		out[pos] = alternation(segValues)
	}
	return strings.Join(out, "/")
}

// alternation renders distinct values in first-seen order as {a|b|c},
// a lone value as itself, and an overflowing set as a wildcard.
func alternation(values []string) string {
	var distinct []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	if len(distinct) == 1 {
		return distinct[0]
	}
	if len(distinct) > maxAlternatives {
		return "*"
	}
	return "{" + strings.Join(distinct, "|") + "}"
}
