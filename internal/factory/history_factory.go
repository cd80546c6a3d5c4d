package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/interview-scheduler/internal/adapters/history"
	"github.com/mikey/interview-scheduler/internal/config"
	"github.com/mikey/interview-scheduler/internal/core"
	"go.uber.org/zap"
)

// HistoryFactory creates history archives based on configuration
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHistoryFactory creates a new history factory
func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHistoryArchive creates a history archive based on the configuration
func (f *HistoryFactory) CreateHistoryArchive() (core.HistoryArchive, error) {
	if !f.cfg.GetBool("history.enabled") {
		return history.NewNoopArchive(), nil
	}

	historyType := f.cfg.GetString("history.type")
	switch historyType {
	case "memory":
		return history.NewMemoryArchive(f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("history.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return history.NewSQLiteArchive(sqlitePath, f.logger)
	case "mysql":
		mysqlDSN := f.cfg.GetString("history.mysql_dsn")
		return history.NewMySQLArchive(mysqlDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported history type: %s", historyType)
	}
}
