package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/sieve/internal/model"
)

func sampleSuperGroups() []model.SuperGroup {
	return []model.SuperGroup{
		{
			RuleID:                 "CGR_0018",
			RepresentativeTemplate: "Clock '<VAR>' interacts with clock '<VAR>'",
			RepresentativePattern:  "clk_{a|b} / clk_*",
			TotalCount:             5,
			MergedVariantsCount:    2,
			OriginalLogs:           []string{"l1", "l2", "l3", "l4", "l5"},
		},
		{
			RuleID:                 "UNC_0034",
			RepresentativeTemplate: "Endpoint '<VAR>' is unconstrained",
			RepresentativePattern:  "u_top/reg_*",
			TotalCount:             1,
			MergedVariantsCount:    1,
			OriginalLogs:           []string{"l6"},
		},
	}
}

func TestFromSuperGroups(t *testing.T) {
	groups := FromSuperGroups(sampleSuperGroups(), 0)
	require.Len(t, groups, 2)

	assert.Equal(t, GroupTypeAI, groups[0].GroupType)
	assert.Equal(t, "CGR_0018::ai::000000", groups[0].GroupID)
	assert.Equal(t, "UNC_0034::ai::000001", groups[1].GroupID)
	assert.Equal(t, 5, groups[0].TotalCount)
	assert.Len(t, groups[0].OriginalLogs, 5)
}

func TestFromSuperGroups_TruncatesLogs(t *testing.T) {
	groups := FromSuperGroups(sampleSuperGroups(), 2)
	assert.Len(t, groups[0].OriginalLogs, 2)
	assert.Equal(t, []string{"l1", "l2"}, groups[0].OriginalLogs)
	assert.Len(t, groups[1].OriginalLogs, 1)
}

func TestFromLogicGroups(t *testing.T) {
	logicGroups := []model.LogicGroup{
		{
			RuleID:    "R1",
			Signature: "pipe_*",
			Template:  "Pin '<VAR>' floating",
			Count:     2,
			Members: []model.ParsedRecord{
				{RawText: "Pin 'pipe_1' floating"},
				{RawText: "Pin 'pipe_2' floating"},
			},
		},
	}

	groups := FromLogicGroups(logicGroups, 0)
	require.Len(t, groups, 1)
	assert.Equal(t, GroupTypeLogic, groups[0].GroupType)
	assert.Equal(t, "R1::logic::000000", groups[0].GroupID)
	assert.Equal(t, "pipe_*", groups[0].RepresentativePattern)
	assert.Equal(t, 1, groups[0].MergedVariantsCount)
	assert.Equal(t, []string{"Pin 'pipe_1' floating", "Pin 'pipe_2' floating"}, groups[0].OriginalLogs)
}

func TestWriteRead_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")

	doc := NewDocument(RunInfo{
		LogFile: "report.log",
		Counts:  Counts{Records: 6, LogicGroups: 3},
		AI:      AIInfo{Enabled: true, Backend: "local"},
	}, FromSuperGroups(sampleSuperGroups(), 0))

	require.NoError(t, Write(path, doc, 2))

	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, got.SchemaVersion)
	assert.Equal(t, "report.log", got.Run.LogFile)
	assert.NotEmpty(t, got.Run.TimestampUTC)
	assert.Equal(t, 2, got.Run.Counts.SuperGroups)
	assert.True(t, got.Run.AI.Enabled)
	assert.Equal(t, doc.Groups, got.Groups)
}

func TestWrite_Compact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	doc := NewDocument(RunInfo{}, nil)
	require.NoError(t, Write(path, doc, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n  ")
}

func TestRead_LegacyBareList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `[
		{
			"group_type": "ai",
			"group_id": "R1::ai::000000",
			"rule_id": "R1",
			"representative_template": "T",
			"representative_pattern": "p_*",
			"total_count": 3,
			"merged_variants_count": 2,
			"original_logs": ["a", "b"]
		}
	]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	doc, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.SchemaVersion)
	require.Len(t, doc.Groups, 1)
	assert.Equal(t, "R1", doc.Groups[0].RuleID)
	assert.Equal(t, 1, doc.Run.Counts.SuperGroups)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
