package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectLevels(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		levels []int
		want   string
	}{
		{"nil keeps all segments", "u_top/core/clk_gen", nil, "u_top core clk_gen"},
		{"single level", "u_top/core/clk_gen", []int{0}, "u_top"},
		{"negative from end", "u_top/core/clk_gen", []int{-1}, "clk_gen"},
		{"mixed order preserved", "u_top/core/clk_gen", []int{-1, 0}, "clk_gen u_top"},
		{"out of range dropped", "u_top/core", []int{0, 5}, "u_top"},
		{"negative out of range dropped", "u_top/core", []int{-3, 1}, "core"},
		{"all out of range", "u_top", []int{2, -4}, ""},
		{"empty levels empty result", "u_top/core", []int{}, ""},
		{"flat value", "clk_main", nil, "clk_main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectLevels(tt.value, tt.levels))
		})
	}
}
