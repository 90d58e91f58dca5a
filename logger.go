package meshfair

import (
	"log/slog"

	"github.com/soypat/meshfair/internal/logging"
)

// SetLogger configures the logger for meshfair and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
// SetLogger is safe for concurrent use.
//
// Log levels used:
//   - [slog.LevelDebug]: per-iteration smoothing progress, solver iteration counts
//   - [slog.LevelInfo]: mesh load, surface area, finished operations
//   - [slog.LevelWarn]: skipped degenerate triangles, collapsed faces
//
// Example:
//
//	meshfair.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) { logging.Set(l) }

// Logger returns the current logger used by meshfair.
func Logger() *slog.Logger { return logging.Logger() }
