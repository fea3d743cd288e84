// Package lsp exposes the session, bridge and registry over the
// Language Server Protocol via stdio.
package lsp

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/viewbind/viewbind/pkg/bridge"
	"github.com/viewbind/viewbind/pkg/config"
	"github.com/viewbind/viewbind/pkg/format"
	"github.com/viewbind/viewbind/pkg/member"
	"github.com/viewbind/viewbind/pkg/oracle"
	"github.com/viewbind/viewbind/pkg/registry"
	"github.com/viewbind/viewbind/pkg/session"
)

const serverName = "viewbind"

// Server wires the protocol handlers to the document session. One
// instance serves one client over stdio.
type Server struct {
	ctx       context.Context
	fs        afero.Fs
	cfg       config.Config
	session   *session.Session
	bridge    *bridge.Bridge
	registry  *registry.Registry
	rescanner *registry.Rescanner
	formatter *format.Formatter
	handler   *protocol.Handler
	version   string
}

// NewServer assembles the full stack on the given filesystem.
func NewServer(ctx context.Context, fs afero.Fs, cfg config.Config, version string) *Server {
	sess := session.New(
		member.NewResolver(fs),
		session.NewSuffixBinding(cfg.TemplateExtension, cfg.CompanionExtension),
	)
	reg := registry.New(fs, cfg.RegistryGlobs)

	s := &Server{
		ctx:       ctx,
		fs:        fs,
		cfg:       cfg,
		session:   sess,
		bridge:    bridge.New(sess, oracle.NewStatic(sess)),
		registry:  reg,
		rescanner: registry.NewRescanner(reg, cfg.Debounce()),
		formatter: format.NewFormatter(fs),
		version:   version,
	}

	s.handler = &protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		TextDocumentDidOpen:            s.textDocumentDidOpen,
		TextDocumentDidChange:          s.textDocumentDidChange,
		TextDocumentDidClose:           s.textDocumentDidClose,
		TextDocumentDidSave:            s.textDocumentDidSave,
		TextDocumentCompletion:         s.textDocumentCompletion,
		TextDocumentHover:              s.textDocumentHover,
		TextDocumentDefinition:         s.textDocumentDefinition,
		TextDocumentPrepareRename:      s.textDocumentPrepareRename,
		TextDocumentRename:             s.textDocumentRename,
		TextDocumentReferences:         s.textDocumentReferences,
		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
		TextDocumentCodeAction:         s.textDocumentCodeAction,
		TextDocumentFormatting:         s.textDocumentFormatting,
		WorkspaceDidChangeWatchedFiles: s.workspaceDidChangeWatchedFiles,
	}

	return s
}

// RunStdio serves the client on stdin/stdout until the stream closes.
func (s *Server) RunStdio() error {
	return server.NewServer(s.handler, serverName, false).RunStdio()
}

// WatchWorkspace watches every directory under root for companion-source
// changes and feeds them to the registry rescanner, for clients that do
// not send workspace/didChangeWatchedFiles. The returned function stops
// the watcher.
func (s *Server) WatchWorkspace(root string) (func() error, error) {
	var dirs []string
	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("collecting watch directories under %s: %w", root, err)
	}
	return registry.Watch(s.ctx, dirs, s.cfg.CompanionExtension, s.rescanner)
}

// uriToPath strips the file scheme so session and filesystem lookups
// share one key space.
func uriToPath(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	return strings.TrimPrefix(uri, "file:")
}

func pathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// contentFor fetches the current text of any file edits may land in:
// open templates come from the session, everything else from disk.
func (s *Server) contentFor(path string) (string, bool) {
	if doc, ok := s.session.Document(s.ctx, path); ok {
		return doc.Content, true
	}
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		zerolog.Ctx(s.ctx).Warn().Err(err).Str("path", path).Msg("cannot read file for position conversion")
		return "", false
	}
	return string(content), true
}
