package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/sieve/internal/cluster/ai"
	"github.com/crimson-sun/sieve/internal/cluster/logic"
	"github.com/crimson-sun/sieve/internal/config"
	"github.com/crimson-sun/sieve/internal/embed"
	"github.com/crimson-sun/sieve/internal/model"
	"github.com/crimson-sun/sieve/internal/parse"
	"github.com/crimson-sun/sieve/internal/results"
	"github.com/crimson-sun/sieve/internal/ruleconf"
)

// defaultRuleConfigFile is picked up from the working directory when no
// explicit --rule-config is given.
const defaultRuleConfigFile = "rule_clustering_config.json"

// runFlags are shared by the gca and cluster commands.
type runFlags struct {
	out            string
	configPath     string
	ruleConfigPath string
	aiMode         string
	sanityItem     string
	jsonIndent     int
	maxLogs        int
	strictConfig   bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "clustering_results.json",
		"output results file")
	cmd.Flags().StringVar(&f.configPath, "config", "",
		"application config file (JSON)")
	cmd.Flags().StringVar(&f.ruleConfigPath, "rule-config", "",
		"per-rule clustering weight config (JSON)")
	cmd.Flags().StringVar(&f.aiMode, "ai", "auto",
		"semantic merge stage: auto, on, off")
	cmd.Flags().StringVar(&f.sanityItem, "sanity-item", "",
		"sanity item name recorded in the results metadata")
	cmd.Flags().IntVar(&f.jsonIndent, "json-indent", 2,
		"output indentation, 0 for compact")
	cmd.Flags().IntVar(&f.maxLogs, "max-original-logs", 0,
		"cap raw log lines kept per group, 0 for unlimited")
	cmd.Flags().BoolVar(&f.strictConfig, "strict-config", false,
		"fail on invalid rule config instead of falling back to defaults")
}

func newGCACommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "gca <report-file>",
		Short: "Cluster a single-file constraint analysis report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0], "", &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newClusterCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "cluster <log-file> <template-file>",
		Short: "Cluster a legacy two-file report (log plus rule templates)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0], args[1], &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// runPipeline is the full parse, group, merge, write sequence.
func runPipeline(cmd *cobra.Command, logPath, templatePath string, flags *runFlags) error {
	ctx := cmd.Context()
	start := time.Now()

	if flags.aiMode != "auto" && flags.aiMode != "on" && flags.aiMode != "off" {
		return fmt.Errorf("invalid --ai mode %q (want auto, on, or off)", flags.aiMode)
	}

	cfg, warnings, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	records, err := parse.File(logPath, templatePath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		slog.Warn("no violation instances found", "path", logPath)
	}

	logicGroups := logic.Cluster(records)
	slog.Info("logic clustering done",
		"records", len(records), "groups", len(logicGroups))

	aiInfo := results.AIInfo{Warnings: warnings}
	var groups []results.Group

	if flags.aiMode == "off" {
		groups = results.FromLogicGroups(logicGroups, flags.maxLogs)
	} else {
		embedder, err := buildEmbedder(cfg.Embeddings)
		if err != nil {
			if flags.aiMode == "on" {
				return fmt.Errorf("semantic stage requested but unavailable: %w", err)
			}
			slog.Warn("embedding backend unavailable, semantic merge skipped", "error", err)
			aiInfo.Warnings = append(aiInfo.Warnings, err.Error())
		}
		if closer, ok := embedder.(interface{ Close() error }); ok {
			defer closer.Close()
		}

		ruleCfg, err := loadRuleConfig(flags)
		if err != nil {
			return err
		}

		var superGroups []model.SuperGroup
		if embedder != nil {
			clusterer := ai.New(embedder, ai.DBSCAN{}, ai.Options{
				RuleConfig: ruleCfg,
				BatchSize:  cfg.Embeddings.BatchSize,
			})
			superGroups = clusterer.Run(ctx, logicGroups)
		}

		if len(superGroups) > 0 {
			aiInfo.Enabled = true
			aiInfo.Backend = cfg.Embeddings.Backend
			groups = results.FromSuperGroups(superGroups, flags.maxLogs)
		} else {
			groups = results.FromLogicGroups(logicGroups, flags.maxLogs)
		}
	}

	doc := results.NewDocument(results.RunInfo{
		LogFile:      logPath,
		TemplateFile: templatePath,
		SanityItem:   flags.sanityItem,
		Counts: results.Counts{
			Records:     len(records),
			LogicGroups: len(logicGroups),
		},
		AI: aiInfo,
	}, groups)

	if err := results.Write(flags.out, doc, flags.jsonIndent); err != nil {
		return err
	}

	slog.Info("run complete",
		"out", flags.out,
		"groups", len(groups),
		"ai", aiInfo.Enabled,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// loadRuleConfig resolves the weighted clustering config. An explicit
// path is honored; otherwise the default file is used if present. No
// file at all means the template-only strategy.
func loadRuleConfig(flags *runFlags) (*ruleconf.Config, error) {
	path := flags.ruleConfigPath
	if path == "" {
		if _, err := os.Stat(defaultRuleConfigFile); err != nil {
			return nil, nil
		}
		path = defaultRuleConfigFile
	}
	cfg, err := ruleconf.Load(path, flags.strictConfig)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// buildEmbedder constructs the configured embedding backend.
func buildEmbedder(cfg config.Embeddings) (embed.Embedder, error) {
	switch cfg.Backend {
	case config.BackendOpenAICompatible:
		return embed.NewOpenAIEmbedder(
			cfg.OpenAI.BaseURL,
			cfg.OpenAI.Model,
			cfg.OpenAI.APIKey,
			embed.WithTimeout(time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second),
		), nil
	case config.BackendLocal:
		local, err := embed.NewLocalEmbedder(
			cfg.Local.ModelPath,
			cfg.Local.VocabPath,
			cfg.Local.ProjectionPath,
			cfg.Local.LibraryPath,
		)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, fmt.Errorf("unknown embeddings backend %q", cfg.Backend)
	}
}
