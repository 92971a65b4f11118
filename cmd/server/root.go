package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/fidde/cisco_log_triage/internal/classifier"
	"github.com/fidde/cisco_log_triage/internal/config"
	"github.com/fidde/cisco_log_triage/internal/logging"
	"github.com/fidde/cisco_log_triage/internal/patterns"
	"github.com/fidde/cisco_log_triage/internal/rules"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "cisco-triage",
		Short: "Classify and deduplicate Cisco device logs",
		Long: `cisco-triage sorts Cisco syslog output into severity tiers, drops known
noise and collapses repeated messages. The serve command adds a web dashboard,
AI-assisted root-cause analysis and an OTLP live feed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.Init(cmd.ErrOrStderr(), cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("rules", "config/rules.yaml", "rule set file")
	flags.String("profile", "", "built-in rule profile (default, three-tier); overrides --rules")
	flags.String("patterns", "config/patterns.yaml", "placeholder patterns for template dedup")

	a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	a.v.BindPFlag("rules.file", flags.Lookup("rules"))
	a.v.BindPFlag("rules.profile", flags.Lookup("profile"))
	a.v.BindPFlag("rules.patterns_file", flags.Lookup("patterns"))

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newClassifyCmd(a))
	root.AddCommand(newRulesCmd(a))

	return root
}

// loadRuleSet resolves the configured rule set. A missing rules file falls
// back to the built-in default profile.
func (a *app) loadRuleSet() (*rules.RuleSet, error) {
	if a.cfg.Rules.Profile != "" {
		return rules.Profile(a.cfg.Rules.Profile)
	}

	rs, err := rules.Load(a.cfg.Rules.File)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("rules file not found, using built-in default profile", "path", a.cfg.Rules.File)
		return rules.DefaultRules(), nil
	}
	return rs, err
}

// loadPatterns returns the placeholder patterns, falling back to the
// built-in set when the file is missing.
func (a *app) loadPatterns() ([]patterns.CompiledPattern, error) {
	pats, err := patterns.LoadPatterns(a.cfg.Rules.PatternsFile)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("patterns file not found, using built-in patterns", "path", a.cfg.Rules.PatternsFile)
		return patterns.DefaultPatterns(), nil
	}
	return pats, err
}

func (a *app) newClassifier() (*classifier.Classifier, error) {
	rs, err := a.loadRuleSet()
	if err != nil {
		return nil, err
	}

	var pats []patterns.CompiledPattern
	if rs.Dedup == rules.DedupTemplate {
		if pats, err = a.loadPatterns(); err != nil {
			return nil, err
		}
	}

	c, err := classifier.NewWithPatterns(rs, pats)
	if err != nil {
		return nil, err
	}
	for _, w := range c.Warnings() {
		slog.Warn("rule set warning", "rule_set", rs.Name, "warning", w)
	}
	return c, nil
}
