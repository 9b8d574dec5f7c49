// Package results defines the versioned JSON envelope written after a
// clustering run and read back by the view command. Version 1 files,
// a bare list of groups, are still readable.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/crimson-sun/sieve/internal/model"
)

// SchemaVersion is the envelope version this package writes.
const SchemaVersion = 2

// Group type labels.
const (
	GroupTypeLogic = "logic"
	GroupTypeAI    = "ai"
)

// Document is the full results file.
type Document struct {
	SchemaVersion int     `json:"schema_version"`
	Run           RunInfo `json:"run"`
	Groups        []Group `json:"groups"`
}

// RunInfo records provenance of one clustering run.
type RunInfo struct {
	TimestampUTC string  `json:"timestamp_utc"`
	LogFile      string  `json:"log_file"`
	TemplateFile string  `json:"template_file,omitempty"`
	SanityItem   string  `json:"sanity_item,omitempty"`
	Counts       Counts  `json:"counts"`
	AI           AIInfo  `json:"ai"`
}

// Counts summarizes the pipeline stages.
type Counts struct {
	Records     int `json:"records"`
	LogicGroups int `json:"logic_groups"`
	SuperGroups int `json:"super_groups"`
}

// AIInfo records whether and how the semantic stage ran.
type AIInfo struct {
	Enabled  bool     `json:"enabled"`
	Backend  string   `json:"backend,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Group is one output group, from either pipeline stage.
type Group struct {
	GroupType              string   `json:"group_type"`
	GroupID                string   `json:"group_id"`
	RuleID                 string   `json:"rule_id"`
	RepresentativeTemplate string   `json:"representative_template"`
	RepresentativePattern  string   `json:"representative_pattern"`
	TotalCount             int      `json:"total_count"`
	MergedVariantsCount    int      `json:"merged_variants_count"`
	OriginalLogs           []string `json:"original_logs"`
}

// NewDocument stamps a document with the current UTC time.
func NewDocument(run RunInfo, groups []Group) Document {
	if run.TimestampUTC == "" {
		run.TimestampUTC = time.Now().UTC().Format(time.RFC3339)
	}
	run.Counts.SuperGroups = len(groups)
	return Document{SchemaVersion: SchemaVersion, Run: run, Groups: groups}
}

// FromSuperGroups converts AI-stage output to result groups. maxLogs > 0
// truncates each group's evidence list; zero keeps everything.
func FromSuperGroups(groups []model.SuperGroup, maxLogs int) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{
			GroupType:              GroupTypeAI,
			GroupID:                groupID(g.RuleID, GroupTypeAI, i),
			RuleID:                 g.RuleID,
			RepresentativeTemplate: g.RepresentativeTemplate,
			RepresentativePattern:  g.RepresentativePattern,
			TotalCount:             g.TotalCount,
			MergedVariantsCount:    g.MergedVariantsCount,
			OriginalLogs:           truncateLogs(g.OriginalLogs, maxLogs),
		}
	}
	return out
}

// FromLogicGroups converts first-stage output to result groups, used
// when the AI stage is disabled or unavailable.
func FromLogicGroups(groups []model.LogicGroup, maxLogs int) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		logs := make([]string, len(g.Members))
		for j, r := range g.Members {
			logs[j] = r.RawText
		}
		out[i] = Group{
			GroupType:              GroupTypeLogic,
			GroupID:                groupID(g.RuleID, GroupTypeLogic, i),
			RuleID:                 g.RuleID,
			RepresentativeTemplate: g.Template,
			RepresentativePattern:  g.Signature,
			TotalCount:             g.Count,
			MergedVariantsCount:    1,
			OriginalLogs:           truncateLogs(logs, maxLogs),
		}
	}
	return out
}

func groupID(ruleID, groupType string, n int) string {
	return fmt.Sprintf("%s::%s::%06d", ruleID, groupType, n)
}

func truncateLogs(logs []string, maxLogs int) []string {
	if maxLogs > 0 && len(logs) > maxLogs {
		return logs[:maxLogs]
	}
	return logs
}

// Write serializes a document to path. indent > 0 pretty-prints with
// that many spaces.
func Write(path string, doc Document, indent int) error {
	var (
		data []byte
		err  error
	)
	if indent > 0 {
		data, err = json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("results: marshal: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("results: write %s: %w", path, err)
	}
	return nil
}

// Read loads a results file. A version 1 file, a bare JSON array of
// groups without the envelope, is upgraded to an in-memory Document.
func Read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("results: read %s: %w", path, err)
	}

	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if strings.HasPrefix(trimmed, "[") {
		var groups []Group
		if err := json.Unmarshal(data, &groups); err != nil {
			return Document{}, fmt.Errorf("results: decode %s: %w", path, err)
		}
		return Document{
			SchemaVersion: 1,
			Run:           RunInfo{Counts: Counts{SuperGroups: len(groups)}},
			Groups:        groups,
		}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("results: decode %s: %w", path, err)
	}
	if doc.SchemaVersion == 0 {
		doc.SchemaVersion = 1
	}
	return doc, nil
}
