package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergePatterns(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     string
	}{
		{"empty", nil, ""},
		{"single unchanged", []string{"u_top/clk_*"}, "u_top/clk_*"},
		{"all identical", []string{"clk_*", "clk_*", "clk_*"}, "clk_*"},
		{"all no-var", []string{"NO_VAR", "NO_VAR"}, "NO_VAR"},
		{
			"one disagreeing segment",
			[]string{"u_top/clk_gen_*", "u_top/sig_out_*"},
			"u_top/{clk_gen_*|sig_out_*}",
		},
		{
			"agreement kept literally",
			[]string{"u_top/core/clk_*", "u_top/core/clk_*", "u_top/core/rst_*"},
			"u_top/core/{clk_*|rst_*}",
		},
		{
			"multiple variables aligned",
			[]string{"clk_a / u_top/reg_*", "clk_b / u_top/reg_*"},
			"{clk_a|clk_b} / u_top/reg_*",
		},
		{
			"differing depths alternate whole value",
			[]string{"u_top/clk_*", "clk_*"},
			"{u_top/clk_*|clk_*}",
		},
		{
			"differing variable counts alternate whole patterns",
			[]string{"a / b", "a"},
			"{a / b|a}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergePatterns(tt.patterns))
		})
	}
}

func TestMergePatterns_AlternationFirstSeenNoDuplicates(t *testing.T) {
	got := MergePatterns([]string{"x/b_*", "x/a_*", "x/b_*", "x/c_*"})
	assert.Equal(t, "x/{b_*|a_*|c_*}", got)
}

func TestMergePatterns_OverflowCollapsesToWildcard(t *testing.T) {
	patterns := []string{"x/a", "x/b", "x/c", "x/d", "x/e", "x/f"}
	assert.Equal(t, "x/*", MergePatterns(patterns))
}

func TestMergePatterns_AtCapKeepsAlternation(t *testing.T) {
	patterns := []string{"x/a", "x/b", "x/c", "x/d", "x/e"}
	assert.Equal(t, "x/{a|b|c|d|e}", MergePatterns(patterns))
}
