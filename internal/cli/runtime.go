package cli

import (
	"github.com/gdbtap/gdbtap/internal/correlator"
	"github.com/gdbtap/gdbtap/internal/domain"
	"github.com/gdbtap/gdbtap/internal/tmux"
)

// runtime is the per-invocation stack: the pane manager feeding the
// correlator, plus the resolved request options.
type runtime struct {
	manager *tmux.Manager
	corr    *correlator.Correlator
	opts    correlator.Options
}

// openRuntime wires the stack from globals. The caller must Close it.
func openRuntime(globals *Globals) (*runtime, error) {
	if !tmux.IsAvailable() {
		return nil, domain.NewRequestError(domain.KindNotAvailable, "", "tmux is not installed")
	}
	cfg := globals.Config
	mcfg := &tmux.Config{Session: globals.Session}
	if cfg != nil {
		mcfg.ProcessNames = cfg.Session.ProcessNames
		mcfg.TTL = cfg.Session.TTLDuration()
		if mcfg.Session == "" {
			mcfg.Session = cfg.Session.Tmux
		}
	}
	manager, err := tmux.NewManager(mcfg, globals.logger.Sugar())
	if err != nil {
		return nil, domain.NewRequestError(domain.KindNotAvailable, "", "no tmux server reachable").WithCause(err)
	}
	return &runtime{
		manager: manager,
		corr:    correlator.New(manager, globals.logger.Sugar()),
		opts:    globals.requestOptions(),
	}, nil
}

func (rt *runtime) Close() {
	rt.corr.Close()
}
