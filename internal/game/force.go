package game

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"

	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/rules"
	"github.com/helcomsecretariat/ecosfera-baltica-digital-sub000/internal/game/state"
)

// force handles the tooling-only context override. The machine node is kept;
// only the game context changes.
func (m *Machine) force(snap Snapshot, ev rules.Event) (Snapshot, bool) {
	doc := []byte(ev.Context)
	if ev.Merge {
		current, err := json.Marshal(snap.Context)
		if err != nil {
			m.logger.Warn("force context: encode current state", zap.Error(err))
			return snap, false
		}
		doc, err = jsonpatch.MergePatch(current, ev.Context)
		if err != nil {
			m.logger.Warn("force context: merge patch", zap.Error(err))
			return snap, false
		}
	}

	var next state.GameState
	if err := json.Unmarshal(doc, &next); err != nil {
		m.logger.Warn("force context: decode state", zap.Error(err))
		return snap, false
	}
	m.logger.Info("context forced",
		zap.Stringer("state", snap.Value),
		zap.Bool("merge", ev.Merge),
	)
	snap.Context = next
	return snap, true
}
