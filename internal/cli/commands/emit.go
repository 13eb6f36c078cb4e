package commands

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/surfacegen/genapi/internal/cache"
	"github.com/surfacegen/genapi/internal/cli/config"
	"github.com/surfacegen/genapi/internal/cli/ui"
	"github.com/surfacegen/genapi/internal/history"
)

// flagBindings maps config keys to the flags that override them
var flagBindings = map[string]string{
	"input":                                 "input",
	"output":                                "output",
	"history":                               "history",
	"cache.redis":                           "cache-redis",
	"writer.always_include_base":            "always-include-base",
	"writer.include_fake_attributes":        "include-fake-attributes",
	"writer.platform_not_supported_message": "platform-not-supported-message",
	"filter.include_forwarded_types":        "include-forwarded-types",
	"filter.exclude_attributes":             "exclude-attributes",
	"filter.include_internals":              "include-internals",
	"filter.exclude_list":                   "exclude-list",
	"format.indent":                         "indent",
	"format.color":                          "color",
	"log.verbosity":                         "verbose",
	"log.json":                              "json-log",
}

// addEmitFlags registers the flags shared by emit and watch
func addEmitFlags(flags *pflag.FlagSet) {
	d := config.Default()
	flags.StringP("input", "i", "", "Metadata document (.yaml, .json, optionally .gz)")
	flags.StringP("output", "o", "", "Write declarations to this file instead of stdout")
	flags.String("history", "", "Record the emission in this database (SQLite path or postgres:// URL)")
	flags.String("cache-redis", "", "Reuse rendered surfaces from the Redis server at this address")
	flags.Bool("display", false, "Write short display names instead of reference-assembly output")
	flags.Bool("always-include-base", d.Writer.AlwaysIncludeBase, "Write System.Object as an explicit base class")
	flags.Bool("include-fake-attributes", d.Writer.IncludeFakeAttributes, "Write pseudo-attributes such as Serializable in display mode")
	flags.String("platform-not-supported-message", d.Writer.PlatformNotSupportedMessage, "Message for generated PlatformNotSupportedException stubs")
	flags.Bool("include-forwarded-types", d.Filter.IncludeForwardedTypes, "Write TypeForwardedTo attributes for forwarded types")
	flags.Bool("exclude-attributes", d.Filter.ExcludeAttributes, "Drop attributes that are not part of the public contract")
	flags.Bool("include-internals", d.Filter.IncludeInternals, "Include every type and member regardless of visibility")
	flags.String("exclude-list", d.Filter.ExcludeList, "File of documentation ids to exclude, one per line")
	flags.String("indent", d.Format.Indent, "Indentation unit")
	flags.Bool("color", d.Format.Color, "Colorize declarations written to a terminal")
}

// loadConfig merges defaults, the config file, environment and flags. A
// positional argument overrides the input document.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}

	for key, name := range flagBindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	if display, _ := cmd.Flags().GetBool("display"); display {
		v.Set("writer.for_compilation", false)
	}
	if len(args) > 0 {
		v.Set("input", args[0])
	}

	return config.FromViper(v)
}

// openHistory opens the configured history store, or returns nil when none is set
func openHistory(ctx context.Context, cfg *config.Config) (*history.Store, error) {
	if cfg.History == "" {
		return nil, nil
	}
	return history.Open(ctx, cfg.History)
}

// openCache connects to the configured render cache, or returns nil when none is set
func openCache(ctx context.Context, cfg *config.Config) (*cache.RedisCache, error) {
	if cfg.Cache.Redis == "" {
		return nil, nil
	}
	return cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Cache.Redis,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		TTL:      cfg.Cache.TTL,
	})
}

// newPipeline opens the history store and render cache the config names and
// returns a pipeline using them, with a cleanup that closes both.
func newPipeline(cmd *cobra.Command, cfg *config.Config) (*Pipeline, func(), error) {
	ctx := commandContext(cmd)
	store, err := openHistory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	rc, err := openCache(ctx, cfg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	p := NewPipeline(cfg, cmd.ErrOrStderr())
	p.Stdout = cmd.OutOrStdout()
	p.Terminal = isTerminal(p.Stdout)
	p.History = store
	if rc != nil {
		p.Cache = rc
	}

	cleanup := func() {
		p.Logger().Sync()
		if store != nil {
			store.Close()
		}
		if rc != nil {
			rc.Close()
		}
	}
	return p, cleanup, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// NewEmitCommand creates the emit command
func NewEmitCommand() *cobra.Command {
	var (
		typeName  string
		dumpModel string
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "emit [document]",
		Short: "Write the API surface of an assembly",
		Long: `Read a metadata document and write C# declarations for everything a
consumer of the assembly can see.

By default output is reference-assembly source: fully qualified global::
names, pseudo-attributes and private constructors that stop the compiler
from adding public ones. Use --display for short, readable names.

Examples:
  # Write the public surface to stdout
  genapi emit Contoso.Widgets.yaml

  # Reference source with forwarded types, into a file
  genapi emit -i Contoso.Widgets.json.gz -o ref/Contoso.Widgets.cs --include-forwarded-types

  # One type, readable
  genapi emit Contoso.Widgets.yaml --display --type Contoso.Widgets.Widget

  # Track surface changes between builds
  genapi emit Contoso.Widgets.yaml -o ref.cs --history .genapi/history.db
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}

			p, cleanup, err := newPipeline(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			p.TypeName = typeName
			p.DumpModel = dumpModel

			result, err := p.Run(commandContext(cmd), "")
			if err != nil {
				return err
			}

			if !quiet {
				printSummary(cmd, cfg, result)
			}
			return nil
		},
	}

	addEmitFlags(cmd.Flags())
	cmd.Flags().StringVar(&typeName, "type", "", "Write only this type (full name, nested types joined by '.')")
	cmd.Flags().StringVar(&dumpModel, "dump-model", "", "Also write the decoded metadata document to this path (.yaml, .json, .gz)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the summary")

	return cmd
}

func printSummary(cmd *cobra.Command, cfg *config.Config, result *Result) {
	cmd.PrintErr(summaryText(cfg.Output, result, noColorFlag(cmd)))
}

// summaryText renders the summary of a finished emission
func summaryText(output string, result *Result, noColor bool) string {
	opts := ui.SummaryOptions{
		Summary:     result.Summary,
		Output:      output,
		Elapsed:     result.Elapsed,
		Diagnostics: result.Diagnostics,
		NoColor:     noColor,
	}
	if result.Recorded {
		opts.History = result.Change.String()
	}
	if result.Cached {
		if opts.Output == "" {
			opts.Output = "stdout"
		}
		opts.Output += " (cached)"
	}
	return ui.FormatSummary(opts)
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
