package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fidde/cisco_log_triage/internal/classifier"
	"github.com/fidde/cisco_log_triage/internal/textdecode"
	"github.com/spf13/cobra"
)

func newClassifyCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "classify [file|-]",
		Short: "Classify a log file (or stdin) and print the report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			c, err := a.newClassifier()
			if err != nil {
				return err
			}
			report, err := c.ClassifyReader(textdecode.NewReader(in))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "markdown", "md":
				_, err = io.WriteString(out, classifier.Markdown(report))
			case "text":
				_, err = io.WriteString(out, classifier.PlainText(report))
			case "digest":
				_, err = io.WriteString(out, classifier.PromptDigest(report, classifier.DefaultDigestChars))
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				err = enc.Encode(report)
			default:
				return fmt.Errorf("unknown format %q (supported: markdown, text, digest, json)", format)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown, text, digest, json")
	return cmd
}

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule set as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClassifier()
			if err != nil {
				return err
			}
			data, err := c.Rules().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
