// Package export serializes session state to the JSON shapes the operator
// pastes into downstream tooling, and copies them to the system clipboard.
package export

import (
	"encoding/json"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"marker/internal/types"
)

// Instructions renders an instruction list exactly as authored:
// pretty-printed with two-space indent, keys in authored order, unscored
// verdicts omitted. Used for both the Final Instructions export and the
// per-model evaluated exports.
func Instructions(insts []types.Instruction) ([]byte, error) {
	return json.MarshalIndent(insts, "", "  ")
}

// Copy writes data to the system clipboard, fire-and-forget. Clipboard
// failure is logged and otherwise ignored; it must never take the session
// down.
func Copy(log *zap.Logger, label string, data []byte) {
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		if err := clipboard.WriteAll(string(data)); err != nil {
			log.Warn("clipboard copy failed", zap.String("label", label), zap.Error(err))
			return
		}
		log.Debug("copied to clipboard", zap.String("label", label), zap.Int("bytes", len(data)))
	}()
}
