package ui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/xmltab/pkg/logger"
	"github.com/oakwood-commons/xmltab/pkg/xmltable"
)

// Run starts the interactive view over session and blocks until the user
// quits or ctx is canceled. startKeys are applied before the first frame.
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func Run(ctx context.Context, session *xmltable.Session, opts Options, startKeys []string, progOpts ...tea.ProgramOption) error {
	lgr := logger.FromContext(ctx)
	m := New(session, opts)
	if len(startKeys) > 0 {
		ApplyKeys(m, startKeys)
	}

	all := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Width > 0 && opts.Height > 0 {
		all = append(all, tea.WithWindowSize(opts.Width, opts.Height))
	}
	all = append(all, progOpts...)

	lgr.V(1).Info("starting interactive view", "file", session.FileName(), "columns", len(session.Engine.Columns()))
	_, err := tea.NewProgram(m, all...).Run()
	return err
}

// Snapshot renders the view once after applying keys, without a terminal.
func Snapshot(session *xmltable.Session, opts Options, keys []string) string {
	m := New(session, opts)
	ApplyKeys(m, keys)
	return m.Render()
}
