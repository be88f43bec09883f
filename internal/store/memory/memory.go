// Package memory implements the in-process persistence driver. It is
// the default for development and tests; nothing survives a restart.
package memory

import (
	"context"

	"github.com/taskrooms/taskrooms/internal/identity"
	"github.com/taskrooms/taskrooms/internal/invitations"
	"github.com/taskrooms/taskrooms/internal/rooms"
	"github.com/taskrooms/taskrooms/internal/store"
	"github.com/taskrooms/taskrooms/internal/tasks"
)

func init() {
	store.Register("memory", NewDriver)
}

// Driver bundles the in-memory domain stores.
type Driver struct {
	users       *identity.MemoryUserRepo
	rooms       *rooms.MemoryStore
	invitations *invitations.MemoryStore
	tasks       *tasks.MemoryStore
}

// NewDriver creates a new memory driver instance.
func NewDriver(cfg *store.DriverConfig) (store.Driver, error) {
	return &Driver{
		users:       identity.NewMemoryUserRepo(),
		rooms:       rooms.NewMemoryStore(),
		invitations: invitations.NewMemoryStore(),
		tasks:       tasks.NewMemoryStore(),
	}, nil
}

func (d *Driver) Name() string { return "memory" }

func (d *Driver) Init(ctx context.Context) error { return nil }

func (d *Driver) Close() error { return nil }

func (d *Driver) Users() identity.UserRepo       { return d.users }
func (d *Driver) Rooms() rooms.Store             { return d.rooms }
func (d *Driver) Invitations() invitations.Store { return d.invitations }
func (d *Driver) Tasks() tasks.Store             { return d.tasks }

var _ store.Driver = (*Driver)(nil)
