package dbstore

import (
	"fmt"
	"net/url"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/yiblet/clipvault/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// driverName is the database/sql name registered by the pure-Go SQLite
// driver, which ships with FTS5 and the trigram tokenizer.
const driverName = "sqlite"

// Config controls the connection pool and per-connection pragmas.
type Config struct {
	Pool   PoolConfig
	SQLite SQLiteConfig
}

// PoolConfig bounds the database/sql connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLiteConfig lists the pragmas applied to every new connection.
type SQLiteConfig struct {
	BusyTimeoutMs int
	WAL           bool
	ForeignKeys   bool
}

// DefaultConfig returns a single-writer configuration.
func DefaultConfig() Config {
	return Config{
		Pool: PoolConfig{
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		SQLite: SQLiteConfig{
			BusyTimeoutMs: 5000,
			WAL:           true,
			ForeignKeys:   true,
		},
	}
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock replaces the clock used for item timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// SQLiteStore is a SQLite-backed implementation of store.Store
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
	now    func() time.Time
}

var _ store.Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed store at the specified path.
// It initializes the schema, including the search shadow table, and seeds
// default settings.
func NewSQLiteStore(dbPath string, cfg Config, opts ...Option) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: driverName,
		DSN:        buildDSN(dbPath, cfg.SQLite),
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	}

	s := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := s.initDefaultSettings(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to init settings: %w", err)
	}

	return s, nil
}

// buildDSN appends the pragmas as _pragma query parameters so the driver
// applies them to each pooled connection, not just the first.
func buildDSN(dbPath string, cfg SQLiteConfig) string {
	params := url.Values{}
	if cfg.BusyTimeoutMs > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeoutMs))
	}
	if cfg.ForeignKeys {
		params.Add("_pragma", "foreign_keys(1)")
	}
	if cfg.WAL {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	if len(params) == 0 {
		return dbPath
	}
	return dbPath + "?" + params.Encode()
}

func (s *SQLiteStore) migrate() error {
	if err := s.db.AutoMigrate(&ItemModel{}, &GroupModel{}, &ItemGroupModel{}, &SettingModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := s.db.Exec(ftsSchema).Error; err != nil {
		return fmt.Errorf("failed to create search index: %w", err)
	}
	return nil
}

// History returns the history store
func (s *SQLiteStore) History() store.HistoryStore {
	return &sqliteHistoryStore{db: s.db, now: s.now}
}

// Settings returns the settings store
func (s *SQLiteStore) Settings() store.SettingsStore {
	return &sqliteSettingsStore{db: s.db, now: s.now}
}

// Groups returns the group store
func (s *SQLiteStore) Groups() store.GroupStore {
	return &sqliteGroupStore{db: s.db, now: s.now}
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// initDefaultSettings seeds default settings without overwriting existing values
func (s *SQLiteStore) initDefaultSettings() error {
	now := s.now().UnixNano()
	for key, value := range store.DefaultSettings {
		model := &SettingModel{Key: key, Value: value, UpdatedAtNs: now}
		if err := s.db.Where("key = ?", key).FirstOrCreate(model).Error; err != nil {
			return err
		}
	}
	return nil
}
