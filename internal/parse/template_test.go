package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskTemplate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"quoted spans", "Clock 'clk_a' drives 'u_top/reg'", "Clock '<VAR>' drives '<VAR>'"},
		{"standalone numbers", "Found 12 endpoints in 3 paths", "Found <NUM> endpoints in <NUM> paths"},
		{"mixed", "Path 'p1' has 4 stages", "Path '<VAR>' has <NUM> stages"},
		{"no masking needed", "Design has unresolved references", "Design has unresolved references"},
		{"digits inside words untouched", "reg4x has issues", "reg4x has issues"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskTemplate(tt.in))
		})
	}
}

func TestExtractVariables(t *testing.T) {
	assert.Equal(t, []string{"a", "b/c"}, ExtractVariables("x 'a' y 'b/c'"))
	assert.Equal(t, []string{"NO_VAR"}, ExtractVariables("no quotes here"))
	assert.Equal(t, []string{""}, ExtractVariables("empty '' quote"))
}

func TestTemplateManager_Lookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.txt")
	content := strings.Join([]string{
		"Rule           Count  Waived  Message",
		"------------------------------------",
		"CGR_0018       2      0       Clock 'clk' interacts with clock 'other'",
		"UNC_0034       1      0       Endpoint 'e' is unconstrained",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tm, err := NewTemplateManager(path)
	require.NoError(t, err)

	assert.Equal(t, "CGR_0018", tm.RuleID("Clock '<VAR>' interacts with clock '<VAR>'"))
	assert.Equal(t, "UNC_0034", tm.RuleID("Endpoint '<VAR>' is unconstrained"))
}

func TestTemplateManager_UnknownTemplateHash(t *testing.T) {
	tm, err := NewTemplateManager("")
	require.NoError(t, err)

	id := tm.RuleID("Some '<VAR>' shape nobody declared")
	assert.True(t, strings.HasPrefix(id, "UNKNOWN_"))
	assert.Len(t, id, len("UNKNOWN_")+6)
	assert.Equal(t, strings.ToUpper(id), id)

	// Deterministic for the same template, distinct for another.
	assert.Equal(t, id, tm.RuleID("Some '<VAR>' shape nobody declared"))
	assert.NotEqual(t, id, tm.RuleID("A different '<VAR>' shape"))
}

func TestTemplateManager_MissingFileTolerated(t *testing.T) {
	tm, err := NewTemplateManager(filepath.Join(t.TempDir(), "absent.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tm.RuleID("anything"), "UNKNOWN_"))
}

func TestParseFile_LegacyTwoFileMode(t *testing.T) {
	dir := t.TempDir()

	tmplPath := filepath.Join(dir, "templates.txt")
	tmpl := "CGR_0018  2  0  Clock 'clk' interacts with clock 'other'\n"
	require.NoError(t, os.WriteFile(tmplPath, []byte(tmpl), 0o644))

	logPath := filepath.Join(dir, "report.log")
	log := strings.Join([]string{
		"Rule summary follows",
		"--------------------",
		"1 of 2  0  Clock 'clk_a' interacts with clock 'clk_b'",
		"2 of 2  0  Clock 'clk_c' interacts with clock 'clk_d'",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(logPath, []byte(log), 0o644))

	records, err := File(logPath, tmplPath)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "CGR_0018", records[0].RuleID)
	assert.Equal(t, "unknown", records[0].Severity)
	assert.Equal(t, []string{"clk_a", "clk_b"}, records[0].Variables)
}
