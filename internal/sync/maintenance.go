package sync

import (
	"context"
	"log/slog"

	"github.com/proposalhub/search-sync/internal/index"
	"github.com/proposalhub/search-sync/pkg/kafka"
)

// MaintenanceCommand is the message ops publish to the maintenance topic to
// trigger bulk index operations remotely.
type MaintenanceCommand struct {
	Action      string `json:"action"` // refresh, rebuild, clear, configure
	RequestedBy string `json:"requested_by,omitempty"`
}

// Maintainer is the slice of the index manager the maintenance consumer
// drives.
type Maintainer interface {
	Refresh(ctx context.Context) index.RefreshResult
	Rebuild(ctx context.Context) (index.RebuildResult, error)
	Clear(ctx context.Context) error
	Configure(ctx context.Context) error
}

// HandleMaintenance returns a Kafka MessageHandler that executes maintenance
// commands against the index manager. Unknown actions are logged and
// committed so they are not redelivered forever.
func HandleMaintenance(manager Maintainer) kafka.MessageHandler {
	logger := slog.Default().With("component", "maintenance-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		cmd, err := kafka.DecodeJSON[MaintenanceCommand](value)
		if err != nil {
			logger.Error("failed to decode maintenance command",
				"error", err,
				"key", string(key),
			)
			return nil
		}

		logger.Info("maintenance command received",
			"action", cmd.Action,
			"requested_by", cmd.RequestedBy,
		)

		switch cmd.Action {
		case "refresh":
			result := manager.Refresh(ctx)
			logger.Info("refresh finished",
				"success", result.Success,
				"indexed", result.Indexed,
				"skipped", result.Skipped,
				"error", result.Error,
			)
		case "rebuild":
			result, err := manager.Rebuild(ctx)
			if err != nil {
				logger.Error("rebuild failed", "error", err)
				return nil
			}
			logger.Info("rebuild finished", "indexed", result.Indexed, "skipped", result.Skipped)
		case "clear":
			if err := manager.Clear(ctx); err != nil {
				logger.Error("clear failed", "error", err)
			}
		case "configure":
			if err := manager.Configure(ctx); err != nil {
				logger.Error("configure failed", "error", err)
			}
		default:
			logger.Warn("unknown maintenance action", "action", cmd.Action)
		}
		return nil
	}
}
