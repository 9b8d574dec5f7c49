// Package logic implements the deterministic first-stage grouping:
// records that are byte-for-byte the same issue except for numeric
// indices collapse into one LogicGroup.
package logic

import (
	"regexp"
	"sort"
	"strings"

	"github.com/crimson-sun/sieve/internal/model"
)

// SignatureSeparator joins per-variable signatures into one fingerprint.
const SignatureSeparator = " / "

var digitRun = regexp.MustCompile(`\d+`)

// Signature derives the masked-variable fingerprint of a record: every
// maximal digit run inside each variable becomes "*", and the results
// are joined in variable order. It is deliberately coarser than the
// message template: only the variable payload matters here.
func Signature(variables []string) string {
	if len(variables) == 0 || (len(variables) == 1 && variables[0] == model.NoVar) {
		return model.NoVar
	}
	masked := make([]string, len(variables))
	for i, v := range variables {
		masked[i] = digitRun.ReplaceAllString(v, "*")
	}
	return strings.Join(masked, SignatureSeparator)
}

// Cluster partitions records by (rule id, signature, template) and
// returns one LogicGroup per distinct key, sorted by member count
// descending. Ties keep first-encounter order, which downstream
// representative picks rely on. Every record lands in exactly one group.
func Cluster(records []model.ParsedRecord) []model.LogicGroup {
	type key struct {
		ruleID    string
		signature string
		template  string
	}

	groups := make(map[key]*model.LogicGroup)
	var order []key

	for _, rec := range records {
		k := key{rec.RuleID, Signature(rec.Variables), rec.Template}
		g, ok := groups[k]
		if !ok {
			g = &model.LogicGroup{
				RuleID:    k.ruleID,
				Signature: k.signature,
				Template:  k.template,
			}
			groups[k] = g
			order = append(order, k)
		}
		g.Members = append(g.Members, rec)
		g.Count++
	}

	result := make([]model.LogicGroup, 0, len(order))
	for _, k := range order {
		result = append(result, *groups[k])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}
