// Package ruleconf loads and resolves the per-rule clustering weight
// configuration consumed by the weighted AI strategy. Lookups are total:
// unknown rule ids resolve to the file's defaults, and in lenient mode a
// broken file resolves to built-in defaults, never an error.
package ruleconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
)

// Built-in defaults, used when the config file omits a field or (in
// lenient mode) cannot be loaded at all.
const (
	DefaultEps            = 0.2
	DefaultTemplateWeight = 0.3
	DefaultVariableWeight = 0.7
)

// ErrInvalid marks configuration validation failures. Strict-mode callers
// branch on it; lenient mode logs and falls back instead.
var ErrInvalid = errors.New("invalid rule clustering config")

// VariableConfig weights one zero-based variable position.
type VariableConfig struct {
	Weight float64
	// Levels selects path segments of a '/'-delimited variable value
	// before embedding; negative indices count from the end. Nil keeps
	// the whole value.
	Levels []int
}

// RuleConfig is the resolved weighting for one rule.
type RuleConfig struct {
	Eps            float64
	TemplateWeight float64
	Variables      map[int]VariableConfig
}

// Config is the full weighted clustering configuration.
type Config struct {
	DefaultEps            float64
	DefaultTemplateWeight float64
	DefaultVariableWeight float64
	Rules                 map[string]RuleConfig
}

// Defaults returns the built-in configuration with no per-rule entries.
func Defaults() Config {
	return Config{
		DefaultEps:            DefaultEps,
		DefaultTemplateWeight: DefaultTemplateWeight,
		DefaultVariableWeight: DefaultVariableWeight,
		Rules:                 map[string]RuleConfig{},
	}
}

// Resolve returns the configuration for a rule id, synthesizing one from
// the defaults when the rule has no entry. The synthetic entry carries an
// empty variable map so the default variable weight applies everywhere.
func (c Config) Resolve(ruleID string) RuleConfig {
	if rc, ok := c.Rules[ruleID]; ok {
		return rc
	}
	return RuleConfig{
		Eps:            c.DefaultEps,
		TemplateWeight: c.DefaultTemplateWeight,
		Variables:      map[int]VariableConfig{},
	}
}

// VariableWeight returns the configured weight for a variable position,
// falling back to the supplied default for unconfigured positions.
func (rc RuleConfig) VariableWeight(pos int, defaultWeight float64) float64 {
	if vc, ok := rc.Variables[pos]; ok {
		return vc.Weight
	}
	return defaultWeight
}

// Load reads and validates a config file. In strict mode any problem
// (unreadable file, malformed JSON, unknown keys, out-of-range values)
// is returned as an error wrapping ErrInvalid. In lenient mode the
// problem is logged and the built-in defaults are returned.
func Load(path string, strict bool) (Config, error) {
	cfg, err := load(path)
	if err != nil {
		if strict {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, err)
		}
		slog.Warn("failed to load rule clustering config, using defaults",
			"path", path, "error", err)
		return Defaults(), nil
	}
	return cfg, nil
}

// Raw wire shapes. Pointers distinguish "absent, use default" from an
// explicit zero; DisallowUnknownFields enforces the strict key sets at
// every level.
type rawConfig struct {
	DefaultEps            *float64                   `json:"default_eps"`
	DefaultTemplateWeight *float64                   `json:"default_template_weight"`
	DefaultVariableWeight *float64                   `json:"default_variable_weight"`
	Rules                 map[string]json.RawMessage `json:"rules"`
}

type rawRule struct {
	Eps            *float64                   `json:"eps"`
	TemplateWeight *float64                   `json:"template_weight"`
	Variables      map[string]json.RawMessage `json:"variables"`
}

type rawVariable struct {
	Weight *float64 `json:"weight"`
	Levels []int    `json:"levels"`
}

func load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	if err := strictUnmarshal(data, &raw); err != nil {
		return Config{}, err
	}

	cfg := Defaults()
	if raw.DefaultEps != nil {
		cfg.DefaultEps = *raw.DefaultEps
	}
	if raw.DefaultTemplateWeight != nil {
		cfg.DefaultTemplateWeight = *raw.DefaultTemplateWeight
	}
	if raw.DefaultVariableWeight != nil {
		cfg.DefaultVariableWeight = *raw.DefaultVariableWeight
	}

	if err := checkPositive(cfg.DefaultEps, "default_eps"); err != nil {
		return Config{}, err
	}
	if err := checkNonNegative(cfg.DefaultTemplateWeight, "default_template_weight"); err != nil {
		return Config{}, err
	}
	if err := checkNonNegative(cfg.DefaultVariableWeight, "default_variable_weight"); err != nil {
		return Config{}, err
	}

	for ruleID, ruleRaw := range raw.Rules {
		rc, err := parseRule(ruleID, ruleRaw, cfg.DefaultEps, cfg.DefaultTemplateWeight)
		if err != nil {
			return Config{}, err
		}
		cfg.Rules[ruleID] = rc
	}
	return cfg, nil
}

func parseRule(ruleID string, data json.RawMessage, defaultEps, defaultTemplateWeight float64) (RuleConfig, error) {
	var raw rawRule
	if err := strictUnmarshal(data, &raw); err != nil {
		return RuleConfig{}, fmt.Errorf("rule %q: %w", ruleID, err)
	}

	rc := RuleConfig{
		Eps:            defaultEps,
		TemplateWeight: defaultTemplateWeight,
		Variables:      map[int]VariableConfig{},
	}
	if raw.Eps != nil {
		rc.Eps = *raw.Eps
	}
	if raw.TemplateWeight != nil {
		rc.TemplateWeight = *raw.TemplateWeight
	}

	if err := checkPositive(rc.Eps, "rule "+ruleID+" eps"); err != nil {
		return RuleConfig{}, err
	}
	if err := checkNonNegative(rc.TemplateWeight, "rule "+ruleID+" template_weight"); err != nil {
		return RuleConfig{}, err
	}

	for key, varRaw := range raw.Variables {
		pos, err := strconv.Atoi(key)
		if err != nil || pos < 0 {
			return RuleConfig{}, fmt.Errorf(
				"rule %q: variable key %q must be a non-negative integer", ruleID, key)
		}
		vc, err := parseVariable(ruleID, key, varRaw)
		if err != nil {
			return RuleConfig{}, err
		}
		rc.Variables[pos] = vc
	}
	return rc, nil
}

func parseVariable(ruleID, key string, data json.RawMessage) (VariableConfig, error) {
	var raw rawVariable
	if err := strictUnmarshal(data, &raw); err != nil {
		return VariableConfig{}, fmt.Errorf("rule %q variable %q: %w", ruleID, key, err)
	}

	vc := VariableConfig{Weight: DefaultVariableWeight, Levels: raw.Levels}
	if raw.Weight != nil {
		vc.Weight = *raw.Weight
	}
	if err := checkNonNegative(vc.Weight, "rule "+ruleID+" variable "+key+" weight"); err != nil {
		return VariableConfig{}, err
	}
	return vc, nil
}

func strictUnmarshal(data []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func checkPositive(v float64, name string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%s must be a positive finite number, got %v", name, v)
	}
	return nil
}

func checkNonNegative(v float64, name string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a non-negative finite number, got %v", name, v)
	}
	return nil
}
