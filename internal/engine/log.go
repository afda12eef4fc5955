package engine

import (
	"errors"
	"log/slog"
)

// SetLogger replaces the logger the sheet traces edits and structural
// operations through. Passing nil restores slog.Default(). Tests that want
// silence can pass slog.New(slog.NewTextHandler(io.Discard, nil)).
func (sh *Sheet) SetLogger(log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	sh.log = log
}

// logSetRejected records a Set that the cell refused. A cycle is warned
// about (the caller's dependency graph is in a state they likely did not
// intend); a parse failure is ordinary user input and stays at debug.
func (sh *Sheet) logSetRejected(pos Position, err error) {
	if errors.Is(err, ErrCircularDependency) {
		sh.log.Warn("cell set rejected", "pos", pos, "err", err)
		return
	}
	sh.log.Debug("cell set rejected", "pos", pos, "err", err)
}
