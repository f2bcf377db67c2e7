package datarecording

import "fmt"

// Backends understood by NewWithConfig.
const (
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

// RecorderConfig selects and configures a recording backend.
type RecorderConfig struct {
	// Backend is BackendSQLite or BackendClickHouse. Empty means SQLite.
	Backend string

	// Path is the SQLite file name without the .sqlite3 suffix.
	Path string

	// DSN is the ClickHouse connection string.
	DSN string

	BatchSize int
}

// NewWithConfig creates the recorder described by cfg.
func NewWithConfig(cfg RecorderConfig) (DataRecorder, error) {
	switch cfg.Backend {
	case "", BackendSQLite:
		r, err := New(cfg.Path)
		if err != nil {
			return nil, err
		}

		if cfg.BatchSize > 0 {
			r.(*sqliteWriter).batchSize = cfg.BatchSize
		}

		return r, nil
	case BackendClickHouse:
		return NewClickHouse(cfg.DSN, cfg.BatchSize)
	default:
		return nil, fmt.Errorf("unknown recording backend %q", cfg.Backend)
	}
}
