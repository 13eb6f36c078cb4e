package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/surfacegen/genapi/internal/cli/ui"
	"github.com/surfacegen/genapi/internal/errors"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "genapi",
		Short: "Emit the public API surface of a .NET assembly as C# declarations",
		Long: color.CyanString(`genapi - API surface emitter

genapi reads a metadata document describing an assembly and writes the
declarations of every type and member a consumer can see, without bodies.

Features:
  • Reference-assembly output (global:: names, pseudo-attributes)
  • Pluggable inclusion filters with documentation-id exclude lists
  • Watch mode with a live preview server
  • Emission history for spotting surface changes`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: genapi.yml in the working directory)")
	flags.CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.Bool("json-log", false, "Write logs as JSON")
	flags.Bool("no-color", false, "Disable colored messages")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewEmitCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewHistoryCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the genapi version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Fprint(out, "genapi version: ")
			valueColor.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			valueColor.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			valueColor.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			valueColor.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, printing any failure to stderr
func ExecuteContext(ctx context.Context) error {
	rootCmd := NewRootCommand()
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		noColor := color.NoColor
		if cmd != nil {
			noColor = noColorFlag(cmd)
		}
		reportError(rootCmd.ErrOrStderr(), err, noColor)
		return err
	}
	return nil
}

func noColorFlag(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return noColor || color.NoColor
}

// reportError renders coded diagnostics and lookups with the ui formatters and
// falls back to a plain error line.
func reportError(w io.Writer, err error, noColor bool) {
	var (
		list     errors.DiagnosticList
		diag     *errors.Diagnostic
		notFound *typeNotFoundError
	)
	switch {
	case stderrors.As(err, &notFound):
		fmt.Fprint(w, ui.TypeNotFoundError(notFound.Name, notFound.Suggestions, noColor))
	case stderrors.As(err, &list):
		for _, d := range list {
			fmt.Fprint(w, ui.DiagnosticError(d, noColor))
		}
	case stderrors.As(err, &diag):
		fmt.Fprint(w, ui.DiagnosticError(diag, noColor))
	default:
		errorColor := color.New(color.FgRed, color.Bold)
		if noColor {
			errorColor.DisableColor()
		}
		errorColor.Fprintf(w, "Error: %v\n", err)
	}
}
