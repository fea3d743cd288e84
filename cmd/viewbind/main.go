package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	serve_lsp "github.com/viewbind/viewbind/cmd/viewbind/serve-lsp"
)

// buildVersion comes from the module build info so release binaries
// report their tag without a separate ldflags step.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}
	return info.Main.Version
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "viewbind",
		Short:   "Editor intelligence for view templates and their view-model classes",
		Version: buildVersion(),
	}

	// Plain version string for editor extensions that probe the binary.
	root.AddCommand(&cobra.Command{
		Use:    "raw-version",
		Hidden: true,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(root.Version)
		},
	})
	root.AddCommand(serve_lsp.NewServeLSPCommand())

	return root
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
