// Package ai implements the second-stage semantic merge: logic groups of
// the same rule whose embeddings sit within eps of each other collapse
// into one SuperGroup. Embedding failures degrade the affected rules to
// singleton output; the run itself never fails here.
package ai

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/crimson-sun/sieve/internal/cluster/logic"
	"github.com/crimson-sun/sieve/internal/embed"
	"github.com/crimson-sun/sieve/internal/model"
	"github.com/crimson-sun/sieve/internal/ruleconf"
)

// fillerText is embedded for inactive variable positions so batch shapes
// stay rectangular; the active mask keeps it out of every distance.
const fillerText = "N/A"

// Options configures a Clusterer.
type Options struct {
	// RuleConfig enables the weighted multi-embedding strategy. Nil
	// selects the template-only strategy for every rule.
	RuleConfig *ruleconf.Config
	// Eps is the template-only distance threshold. Zero means the
	// package default.
	Eps float64
	// BatchSize caps texts per embedding call. Zero means 512.
	BatchSize int
}

// Clusterer merges logic groups per rule using embeddings and density
// clustering.
type Clusterer struct {
	emb     embed.Embedder
	cluster ClusterPort
	opts    Options
}

// New returns a Clusterer. emb and cluster may be nil, in which case Run
// returns no super groups and the caller falls back to logic-only output.
func New(emb embed.Embedder, cluster ClusterPort, opts Options) *Clusterer {
	if opts.Eps <= 0 {
		opts.Eps = ruleconf.DefaultEps
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 512
	}
	return &Clusterer{emb: emb, cluster: cluster, opts: opts}
}

// rulePlan is the embedding work for one rule with at least two groups.
// Feature texts live in the shared flat text list; spans index into it.
type rulePlan struct {
	ruleID   string
	groups   []model.LogicGroup
	eps      float64
	weighted bool
	features []featurePlan
}

type featurePlan struct {
	weight float64
	start  int // index of the first text in the flat list
	active []bool
}

// Run clusters the groups and returns super groups sorted by total count
// descending. Inputs are not mutated.
func (c *Clusterer) Run(ctx context.Context, groups []model.LogicGroup) []model.SuperGroup {
	if c.emb == nil || c.cluster == nil || len(groups) == 0 {
		return nil
	}

	byRule := make(map[string][]model.LogicGroup)
	var ruleOrder []string
	for _, g := range groups {
		if _, ok := byRule[g.RuleID]; !ok {
			ruleOrder = append(ruleOrder, g.RuleID)
		}
		byRule[g.RuleID] = append(byRule[g.RuleID], g)
	}

	var result []model.SuperGroup
	var plans []*rulePlan
	var texts []string

	for _, ruleID := range ruleOrder {
		ruleGroups := byRule[ruleID]
		if len(ruleGroups) < 2 {
			for _, g := range ruleGroups {
				result = append(result, singleton(g))
			}
			continue
		}
		plan := c.planRule(ruleID, ruleGroups, &texts)
		plans = append(plans, plan)
	}

	if len(plans) == 0 {
		return finish(result)
	}

	vectors, err := batchEmbed(ctx, c.emb, texts, c.opts.BatchSize)
	if err != nil {
		slog.Warn("embedding pass failed, emitting affected groups unmerged",
			"stage", "embed", "rules", len(plans), "error", err)
		for _, plan := range plans {
			for _, g := range plan.groups {
				result = append(result, singleton(g))
			}
		}
		return finish(result)
	}

	for _, plan := range plans {
		result = append(result, c.clusterRule(plan, vectors)...)
	}
	return finish(result)
}

// planRule chooses the strategy for one rule and appends its feature
// texts to the shared flat list.
func (c *Clusterer) planRule(ruleID string, groups []model.LogicGroup, texts *[]string) *rulePlan {
	plan := &rulePlan{ruleID: ruleID, groups: groups, eps: c.opts.Eps}

	n := len(groups)
	allActive := make([]bool, n)
	for i := range allActive {
		allActive[i] = true
	}

	// Template embedding feeds both strategies.
	templateStart := len(*texts)
	for _, g := range groups {
		*texts = append(*texts, g.Template)
	}

	if c.opts.RuleConfig == nil {
		plan.features = []featurePlan{{start: templateStart, active: allActive}}
		return plan
	}

	rc := c.opts.RuleConfig.Resolve(ruleID)
	plan.weighted = true
	plan.eps = rc.Eps
	plan.features = []featurePlan{{
		weight: rc.TemplateWeight,
		start:  templateStart,
		active: allActive,
	}}

	vars := make([][]string, n)
	maxPositions := 0
	for i, g := range groups {
		if g.Signature != model.NoVar {
			vars[i] = splitSignature(g.Signature)
		}
		if len(vars[i]) > maxPositions {
			maxPositions = len(vars[i])
		}
	}

	for pos := 0; pos < maxPositions; pos++ {
		var levels []int
		if vc, ok := rc.Variables[pos]; ok {
			levels = vc.Levels
		}
		fp := featurePlan{
			weight: rc.VariableWeight(pos, c.opts.RuleConfig.DefaultVariableWeight),
			start:  len(*texts),
			active: make([]bool, n),
		}
		for i := range groups {
			text := fillerText
			if pos < len(vars[i]) {
				if selected := SelectLevels(vars[i][pos], levels); selected != "" {
					text = selected
					fp.active[i] = true
				}
			}
			*texts = append(*texts, text)
		}
		plan.features = append(plan.features, fp)
	}
	return plan
}

// clusterRule turns one rule's embeddings into super groups.
func (c *Clusterer) clusterRule(plan *rulePlan, vectors [][]float64) []model.SuperGroup {
	n := len(plan.groups)

	var labels []int
	if plan.weighted {
		features := make([]feature, len(plan.features))
		for i, fp := range plan.features {
			features[i] = feature{
				weight:  fp.weight,
				vectors: vectors[fp.start : fp.start+n],
				active:  fp.active,
			}
		}
		labels = c.cluster.ClusterDistances(weightedMatrix(n, features), plan.eps)
	} else {
		templates := vectors[plan.features[0].start : plan.features[0].start+n]
		labels = c.cluster.ClusterVectors(templates, plan.eps)
	}

	byLabel := make(map[int][]model.LogicGroup)
	var labelOrder []int
	for i, label := range labels {
		if _, ok := byLabel[label]; !ok {
			labelOrder = append(labelOrder, label)
		}
		byLabel[label] = append(byLabel[label], plan.groups[i])
	}

	merged := make([]model.SuperGroup, 0, len(labelOrder))
	for _, label := range labelOrder {
		merged = append(merged, buildSuperGroup(byLabel[label]))
	}
	return merged
}

// buildSuperGroup folds one cluster of logic groups. The representative
// is the highest-count member, first encountered winning ties.
func buildSuperGroup(members []model.LogicGroup) model.SuperGroup {
	rep := members[0]
	total := 0
	patterns := make([]string, len(members))
	var logs []string
	for i, m := range members {
		total += m.Count
		patterns[i] = m.Signature
		if m.Count > rep.Count {
			rep = m
		}
		for _, r := range m.Members {
			logs = append(logs, r.RawText)
		}
	}
	return model.SuperGroup{
		RuleID:                 rep.RuleID,
		RepresentativeTemplate: rep.Template,
		RepresentativePattern:  MergePatterns(patterns),
		TotalCount:             total,
		MergedVariantsCount:    len(members),
		OriginalLogs:           logs,
	}
}

func singleton(g model.LogicGroup) model.SuperGroup {
	logs := make([]string, len(g.Members))
	for i, r := range g.Members {
		logs[i] = r.RawText
	}
	return model.SuperGroup{
		RuleID:                 g.RuleID,
		RepresentativeTemplate: g.Template,
		RepresentativePattern:  g.Signature,
		TotalCount:             g.Count,
		MergedVariantsCount:    1,
		OriginalLogs:           logs,
	}
}

func finish(result []model.SuperGroup) []model.SuperGroup {
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalCount > result[j].TotalCount
	})
	return result
}

func splitSignature(signature string) []string {
	return strings.Split(signature, logic.SignatureSeparator)
}
