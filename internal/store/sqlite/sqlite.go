// Package sqlite implements a SQLite-based persistence driver using GORM.
package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/store"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

func init() {
	store.Register("sqlite", NewDriver)
}

// Options are the sqlite-specific settings from [store.options.sqlite].
type Options struct {
	// Filename is the database file name inside DataDir. The special
	// value ":memory:" opens a shared in-memory database.
	Filename string `mapstructure:"filename"`

	// BusyTimeoutMS is how long a writer waits on a locked database.
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms"`

	// JournalMode is the sqlite journal mode (wal, delete, truncate).
	JournalMode string `mapstructure:"journal_mode"`
}

func (o *Options) withDefaults() {
	if o.Filename == "" {
		o.Filename = "taskrooms.db"
	}
	if o.BusyTimeoutMS <= 0 {
		o.BusyTimeoutMS = 5000
	}
	if o.JournalMode == "" {
		o.JournalMode = "wal"
	}
}

// Driver implements the store.Driver interface using SQLite via GORM.
type Driver struct {
	dataDir string
	opts    Options
	db      *gorm.DB
}

// NewDriver creates a new SQLite driver instance.
func NewDriver(cfg *store.DriverConfig) (store.Driver, error) {
	var opts Options
	if cfg.Options != nil {
		if err := mapstructure.Decode(cfg.Options, &opts); err != nil {
			return nil, fmt.Errorf("decode sqlite options: %w", err)
		}
	}
	opts.withDefaults()

	if cfg.DataDir == "" && opts.Filename != ":memory:" {
		return nil, fmt.Errorf("data_dir is required for sqlite driver")
	}

	return &Driver{dataDir: cfg.DataDir, opts: opts}, nil
}

// Name returns the driver name.
func (d *Driver) Name() string { return "sqlite" }

// Init opens the database and runs AutoMigrate.
func (d *Driver) Init(ctx context.Context) error {
	var dsn string
	if d.opts.Filename == ":memory:" {
		dsn = "file::memory:?cache=shared"
	} else {
		if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		params := url.Values{}
		params.Set("_busy_timeout", strconv.Itoa(d.opts.BusyTimeoutMS))
		params.Set("_journal_mode", d.opts.JournalMode)
		dsn = filepath.Join(d.dataDir, d.opts.Filename) + "?" + params.Encode()
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	d.db = db

	if err := db.AutoMigrate(
		&userRow{},
		&roomRow{},
		&memberRow{},
		&invitationRow{},
		&taskRow{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Driver) Users() identity.UserRepo       { return &userStore{d} }
func (d *Driver) Rooms() rooms.Store             { return &roomStore{d} }
func (d *Driver) Invitations() invitations.Store { return &invitationStore{d} }
func (d *Driver) Tasks() tasks.Store             { return &taskStore{d} }

var _ store.Driver = (*Driver)(nil)
