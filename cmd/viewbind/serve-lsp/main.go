package serve_lsp

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"gitlab.com/tozd/go/errors"

	"github.com/viewbind/viewbind/pkg/config"
	"github.com/viewbind/viewbind/pkg/lsp"
)

type Handler struct {
	debug     bool
	workspace string
	watch     bool
}

func NewServeLSPCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdio",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&me.workspace, "workspace", "", "workspace root (defaults to the working directory)")
	cmd.Flags().BoolVar(&me.watch, "watch", false, "watch the workspace for component changes (for clients without file watching)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), cmd.Root().Version)
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, version string) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.TraceLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().
		Str("component", "lsp-server").
		Timestamp().
		Logger()
	ctx = logger.WithContext(ctx)

	// glsp's own protocol logging goes through commonlog.
	verbosity := 0
	if me.debug {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	workspace := me.workspace
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Errorf("resolving working directory: %w", err)
		}
		workspace = wd
	}

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, workspace)
	if err != nil {
		return errors.Errorf("loading workspace config: %w", err)
	}

	logger.Info().Str("workspace", workspace).Msg("starting language server")

	server := lsp.NewServer(ctx, fs, cfg, version)

	if me.watch {
		stop, err := server.WatchWorkspace(workspace)
		if err != nil {
			return errors.Errorf("watching workspace: %w", err)
		}
		defer func() {
			if err := stop(); err != nil {
				logger.Warn().Err(err).Msg("stopping workspace watcher")
			}
		}()
	}

	if err := server.RunStdio(); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
