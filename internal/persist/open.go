package persist

import (
	"context"
	"fmt"

	"github.com/creaturesim/server/internal/config"
	"go.uber.org/zap"
)

// OpenChatLog opens the chat log selected by cfg.Driver. Driver "none"
// returns a nil log and no error.
func OpenChatLog(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (ChatLog, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("chat log ready", zap.String("driver", "postgres"))
		return NewPGChatLog(db), nil
	case "sqlite":
		l, err := OpenSQLiteChatLog(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		log.Info("chat log ready", zap.String("driver", "sqlite"), zap.String("path", cfg.DSN))
		return l, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
