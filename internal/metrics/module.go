package metrics

import (
	"go.uber.org/fx"

	"github.com/polkiloo/gopherfood/internal/usecase"
)

// Module provides the Prometheus recorder both as itself and as the
// usecase metrics port.
var Module = fx.Provide(
	NewRecorder,
	func(r *Recorder) usecase.Recorder { return r },
)
