// Package cleanup owns the interrupt handler and the lifecycle of
// transient working state. Registered actions run synchronously before
// process exit on SIGINT/SIGTERM, and at most once overall, so normal
// completion and interrupt cannot double-run them.
package cleanup

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/muesli/termenv"

	"github.com/arthur-debert/rigup/pkg/logging"
)

type action struct {
	name string
	fn   func()
}

// Handler holds named cleanup actions, run LIFO.
type Handler struct {
	mu      sync.Mutex
	actions []action
	done    bool
}

// New creates an empty Handler.
func New() *Handler {
	return &Handler{}
}

// Register adds a cleanup action. Registering the same name twice
// replaces the earlier action in place.
func (h *Handler) Register(name string, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.actions {
		if h.actions[i].name == name {
			h.actions[i].fn = fn
			return
		}
	}
	h.actions = append(h.actions, action{name: name, fn: fn})
}

// Defuse removes a registered action without running it, for work that
// completed normally and no longer needs unwinding.
func (h *Handler) Defuse(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.actions {
		if h.actions[i].name == name {
			h.actions = append(h.actions[:i], h.actions[i+1:]...)
			return
		}
	}
}

// RunAll runs every registered action in reverse registration order,
// exactly once across the process lifetime.
func (h *Handler) RunAll() {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return
	}
	h.done = true
	actions := make([]action, len(h.actions))
	copy(actions, h.actions)
	h.mu.Unlock()

	logger := logging.GetLogger("cleanup")
	for i := len(actions) - 1; i >= 0; i-- {
		logger.Debug().Str("action", actions[i].name).Msg("Running cleanup action")
		actions[i].fn()
	}
}

// InstallSignals wires SIGINT/SIGTERM to run all cleanups, restore the
// terminal, and exit 130. exit is injectable for tests; pass os.Exit.
func (h *Handler) InstallSignals(exit func(int)) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		sigLogger := logging.GetLogger("cleanup")
		sigLogger.Warn().Str("signal", sig.String()).Msg("Interrupted, cleaning up")
		h.RunAll()
		restoreTerminal()
		exit(130)
	}()
}

// restoreTerminal undoes cursor state an interrupted tool may have
// left behind.
func restoreTerminal() {
	out := termenv.NewOutput(os.Stderr)
	out.ShowCursor()
}
