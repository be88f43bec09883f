// Package store provides the persistence driver abstraction and the
// driver registry. Concrete drivers live in subpackages and register
// themselves from init().
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

// Driver is a persistence backend bundling all domain stores over one
// shared handle. Implementations must be safe for concurrent use.
type Driver interface {
	// Init initializes the driver (open handles, create tables).
	Init(ctx context.Context) error

	// Close releases resources held by the driver.
	Close() error

	// Name returns the driver name (memory, sqlite).
	Name() string

	Users() identity.UserRepo
	Rooms() rooms.Store
	Invitations() invitations.Store
	Tasks() tasks.Store
}

// DriverConfig holds configuration for driver selection and
// initialization.
type DriverConfig struct {
	// Driver is the driver name: memory, sqlite.
	Driver string `json:"driver"`

	// DataDir is the directory for data files (sqlite db).
	DataDir string `json:"data_dir"`

	// Options holds driver-specific settings, decoded by the driver.
	Options map[string]any `json:"options"`
}

// DriverFactory is a function that creates a driver instance.
type DriverFactory func(cfg *DriverConfig) (Driver, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]DriverFactory)
)

// Register registers a driver factory by name. Called from init() in
// driver packages.
func Register(name string, factory DriverFactory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// New creates a driver instance based on the configuration.
func New(cfg *DriverConfig) (Driver, error) {
	driversMu.RLock()
	factory, ok := drivers[cfg.Driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown driver: %s", cfg.Driver)
	}

	return factory(cfg)
}

// AvailableDrivers returns the sorted list of registered driver names.
func AvailableDrivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
