package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/surfacegen/genapi/internal/cli/config"
	"github.com/surfacegen/genapi/internal/cli/ui"
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	var (
		dir    string
		yes    bool
		force  bool
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a genapi.yml config file",
		Long: `Create genapi.yml in the current directory (or --dir).

Without --yes, a few questions pick the input document, output file and
inclusion policy. Every setting can later be overridden by flags or
GENAPI_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(dir, config.FileName+".yml")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			cfg.Input = input
			cfg.Output = output
			if !yes {
				if err := askConfig(cfg); err != nil {
					return err
				}
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
			if err := config.Write(path, cfg); err != nil {
				return err
			}

			ui.WriteSuccess(cmd.OutOrStdout(), "Created "+path, noColorFlag(cmd))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to create the config in")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Metadata document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")

	return cmd
}

const (
	modeReference = "reference assembly (global:: names, pseudo-attributes)"
	modeDisplay   = "display (short names)"
)

// askConfig fills cfg from interactive prompts
func askConfig(cfg *config.Config) error {
	questions := []*survey.Question{
		{
			Name: "input",
			Prompt: &survey.Input{
				Message: "Metadata document:",
				Default: cfg.Input,
				Help:    "A .yaml or .json document describing the assembly, optionally gzipped",
			},
			Validate: survey.Required,
		},
		{
			Name: "output",
			Prompt: &survey.Input{
				Message: "Output file (empty for stdout):",
				Default: cfg.Output,
			},
		},
		{
			Name: "mode",
			Prompt: &survey.Select{
				Message: "Output style:",
				Options: []string{modeReference, modeDisplay},
				Default: modeReference,
			},
		},
		{
			Name: "internals",
			Prompt: &survey.Confirm{
				Message: "Include internal and private members?",
				Default: cfg.Filter.IncludeInternals,
			},
		},
		{
			Name: "forwarded",
			Prompt: &survey.Confirm{
				Message: "Write forwarded types?",
				Default: cfg.Filter.IncludeForwardedTypes,
			},
		},
		{
			Name: "history",
			Prompt: &survey.Input{
				Message: "History database (empty to disable):",
				Help:    "A SQLite file such as .genapi/history.db, or a postgres:// URL",
			},
		},
	}

	answers := struct {
		Input     string `survey:"input"`
		Output    string `survey:"output"`
		Mode      string `survey:"mode"`
		Internals bool   `survey:"internals"`
		Forwarded bool   `survey:"forwarded"`
		History   string `survey:"history"`
	}{}
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	cfg.Input = strings.TrimSpace(answers.Input)
	cfg.Output = strings.TrimSpace(answers.Output)
	cfg.Writer.ForCompilation = answers.Mode != modeDisplay
	cfg.Filter.IncludeInternals = answers.Internals
	cfg.Filter.IncludeForwardedTypes = answers.Forwarded
	cfg.History = strings.TrimSpace(answers.History)
	return nil
}
