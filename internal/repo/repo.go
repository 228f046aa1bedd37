package repo

import (
	"context"

	"wsconsole/internal/model"
)

type CommandLog interface {
	// SaveCommand appends a received command and returns its ID.
	SaveCommand(ctx context.Context, cmd *model.Command) (int64, error)

	// RecentCommands returns up to limit commands, newest first.
	RecentCommands(ctx context.Context, limit int) ([]model.Command, error)

	// Close closes the repository connection.
	Close() error
}
