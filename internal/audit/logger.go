package audit

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Action names an audited admin operation.
type Action string

const (
	ActionToggleAdmin Action = "user.toggle_admin"
	ActionDeleteUser  Action = "user.delete"
	ActionCreateItem  Action = "shop.item_create"
	ActionUpdateItem  Action = "shop.item_update"
	ActionDeleteItem  Action = "shop.item_delete"
	ActionLogCommand  Action = "admin.command"
	ActionBootstrap   Action = "user.bootstrap_admin"
	ActionCLISetAdmin Action = "cli.set_admin"
)

// Logger writes audit events as single JSON lines. A nil *Logger discards
// everything.
type Logger struct {
	zl  zerolog.Logger
	now func() time.Time
}

// New creates a Logger writing to w. A nil w writes to stdout.
func New(w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		zl:  zerolog.New(w).With().Str("log", "audit").Logger(),
		now: time.Now,
	}
}

// Record logs an event. err marks the action as failed.
func (l *Logger) Record(action Action, actor, target, details string, err error) {
	if l == nil {
		return
	}

	e := l.zl.Log().
		Time("timestamp", l.now().UTC()).
		Str("action", string(action)).
		Str("actor", actor).
		Str("target", target).
		Bool("success", err == nil)
	if details != "" {
		e = e.Str("details", details)
	}
	if err != nil {
		e = e.Str("error", err.Error())
	}
	e.Msg("")
}
