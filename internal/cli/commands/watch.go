package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/surfacegen/genapi/internal/errors"
	"github.com/surfacegen/genapi/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	var (
		serve string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [document]",
		Short: "Re-emit whenever the metadata document changes",
		Long: `Emit the API surface, then watch the metadata document (and exclude
list, if any) and emit again after every change.

Rapid saves are coalesced and a write that leaves the content unchanged is
ignored. With --serve, the latest surface is also served over HTTP and open
browser tabs reload after each emission.

Serving beyond loopback requires preview.secret in the config (or
GENAPI_PREVIEW_SECRET); the printed URL then carries an access token.

Examples:
  # Rewrite ref.cs on every change
  genapi watch Contoso.Widgets.yaml -o ref.cs

  # Live preview at http://localhost:4000
  genapi watch Contoso.Widgets.yaml --serve localhost:4000
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if cfg.Input == "" {
				return errors.NewMissingInput()
			}

			p, cleanup, err := newPipeline(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session := &watchSession{
				pipeline:    p,
				incremental: watch.NewIncremental(),
				files:       []string{cfg.Input},
				out:         cmd.ErrOrStderr(),
				noColor:     noColorFlag(cmd),
			}
			if cfg.Filter.ExcludeList != "" {
				session.files = append(session.files, cfg.Filter.ExcludeList)
			}

			banner := color.New(color.FgCyan, color.Bold)
			info := color.New(color.FgWhite)
			if session.noColor {
				banner.DisableColor()
				info.DisableColor()
			}
			fmt.Fprintln(session.out)
			banner.Fprintln(session.out, "genapi watch")

			if serve != "" {
				url, shutdown, err := session.servePreview(serve, cfg.Preview.Secret)
				if err != nil {
					return err
				}
				defer shutdown()
				info.Fprintf(session.out, "   Preview: %s\n", url)
			}
			info.Fprintf(session.out, "   Watching: %s\n", session.files[0])
			fmt.Fprintln(session.out)

			if _, err := session.incremental.Changed(session.files); err != nil {
				return err
			}
			session.rebuild(ctx, nil)

			fw, err := watch.NewFileWatcher(session.files, delay, p.Logger(), func(files []string) error {
				session.onChange(ctx, files)
				return nil
			})
			if err != nil {
				return err
			}
			if err := fw.Start(); err != nil {
				return err
			}
			defer fw.Stop()

			<-ctx.Done()
			fmt.Fprintln(session.out, "\nShutting down...")
			return nil
		},
	}

	addEmitFlags(cmd.Flags())
	cmd.Flags().StringVar(&serve, "serve", "", "Serve a live preview on this address (e.g. localhost:4000)")
	cmd.Flags().DurationVar(&delay, "delay", watch.DefaultDelay, "Quiet period before re-emitting after a change")

	return cmd
}

// watchSession re-runs the pipeline for file changes and keeps the preview current
type watchSession struct {
	pipeline    *Pipeline
	preview     *watch.PreviewServer
	incremental *watch.Incremental
	files       []string
	out         io.Writer
	noColor     bool
}

// onChange re-emits when the content of a watched file actually changed
func (s *watchSession) onChange(ctx context.Context, reported []string) {
	changed, err := s.incremental.Changed(s.files)
	if err != nil {
		s.pipeline.Logger().Warn("failed to hash watched files", zap.Error(err))
		changed = reported
	}
	if len(changed) == 0 {
		s.pipeline.Logger().Debug("content unchanged, skipping", zap.Strings("files", reported))
		return
	}
	s.rebuild(ctx, changed)
}

// rebuild runs one emission and reports it. Failures are reported and the
// session keeps watching.
func (s *watchSession) rebuild(ctx context.Context, changed []string) *Result {
	runID := uuid.NewString()
	if s.preview != nil {
		s.preview.NotifyBuilding(runID, changed)
	}

	result, err := s.pipeline.Run(ctx, runID)
	if err != nil {
		reportError(s.out, err, s.noColor)
		if s.preview != nil {
			s.preview.PublishError(runID, err)
		}
		return nil
	}

	if s.preview != nil {
		s.preview.Publish(runID, result.Surface, result.Summary, result.Diagnostics)
	}
	fmt.Fprint(s.out, summaryText(s.pipeline.Config.Output, result, s.noColor))
	return result
}

// servePreview starts the preview server on addr. A secret enables token
// auth; without one only loopback addresses are accepted.
func (s *watchSession) servePreview(addr, secret string) (string, func(), error) {
	var opts []watch.PreviewOption
	query := ""
	if secret != "" {
		auth := watch.NewTokenAuth(secret, 0)
		token, err := auth.Issue("watch")
		if err != nil {
			return "", nil, err
		}
		opts = append(opts, watch.WithAuth(auth))
		query = "?token=" + token
	} else if !isLoopback(addr) {
		return "", nil, errors.NewInvalidConfig("preview.secret", fmt.Sprintf("required to serve on %s", addr))
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.preview = watch.NewPreviewServer(s.pipeline.Logger(), opts...)
	srv := &http.Server{Handler: s.preview.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.pipeline.Logger().Error("preview server stopped", zap.Error(err))
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.preview.Close()
		srv.Shutdown(ctx)
	}
	return "http://" + ln.Addr().String() + "/" + query, shutdown, nil
}

// isLoopback reports whether addr binds only the loopback interface
func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
