package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joeblew999/plat-irrigation/internal/pager"
	"github.com/joeblew999/plat-irrigation/internal/reading"
	"github.com/joeblew999/plat-irrigation/internal/service"
)

// MaxPageSize bounds the page size of a new dashboard.
const MaxPageSize = 500

// DefaultIdleTimeout is how long a dashboard nobody follows or reads
// stays open.
const DefaultIdleTimeout = 10 * time.Minute

// Registry tracks open dashboards. Each dashboard pages over the same
// dataset but keeps its own position and layer views.
//
// A dashboard is closed when the last live view following it goes away,
// or once it has been idle for the idle timeout with no view attached.
type Registry struct {
	mu       sync.RWMutex
	items    map[string]*entry
	data     reading.Dataset
	pageSize int
	catalog  Catalog
	bus      *service.EventBus
	idle     time.Duration
	now      func() time.Time
}

type entry struct {
	c         *Controller
	followers int
	seen      time.Time
}

// NewRegistry creates a registry. bus may be nil.
func NewRegistry(ds reading.Dataset, pageSize int, catalog Catalog, bus *service.EventBus) *Registry {
	if pageSize <= 0 {
		pageSize = pager.DefaultPageSize
	}
	return &Registry{
		items:    make(map[string]*entry),
		data:     ds,
		pageSize: pageSize,
		catalog:  catalog,
		bus:      bus,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
	}
}

// PageSize returns the page size new dashboards start with.
func (r *Registry) PageSize() int { return r.pageSize }

// Dataset returns the shared dataset.
func (r *Registry) Dataset() reading.Dataset { return r.data }

// Create opens a new dashboard on page 1. A non-positive pageSize uses the
// registry default; larger than MaxPageSize is capped. Idle dashboards are
// swept first.
func (r *Registry) Create(pageSize int) *Controller {
	r.Sweep()
	if pageSize <= 0 {
		pageSize = r.pageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	c := NewController(uuid.NewString(), r.data, pageSize, r.catalog)

	r.mu.Lock()
	r.items[c.ID()] = &entry{c: c, seen: r.now()}
	r.mu.Unlock()

	r.publish(service.ActionCreated, c.ID())
	return c
}

// Get returns the dashboard with id and marks it as used.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return nil, ErrDashboardNotFound
	}
	e.seen = r.now()
	return e.c, nil
}

// Follow attaches a live view to the dashboard with id. The returned
// release func detaches it; releasing the last view closes the dashboard.
func (r *Registry) Follow(id string) (*Controller, func(), error) {
	r.mu.Lock()
	e, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return nil, nil, ErrDashboardNotFound
	}
	e.followers++
	e.seen = r.now()
	r.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			e.followers--
			closed := e.followers == 0 && r.items[id] == e
			if closed {
				delete(r.items, id)
			}
			r.mu.Unlock()
			if closed {
				r.publish(service.ActionDeleted, id)
			}
		})
	}
	return e.c, release, nil
}

// Delete closes a dashboard.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	if _, ok := r.items[id]; !ok {
		r.mu.Unlock()
		return ErrDashboardNotFound
	}
	delete(r.items, id)
	r.mu.Unlock()

	r.publish(service.ActionDeleted, id)
	return nil
}

// Sweep closes every dashboard with no live view that has not been read
// within the idle timeout. It returns how many were closed.
func (r *Registry) Sweep() int {
	now := r.now()
	var closed []string
	r.mu.Lock()
	for id, e := range r.items {
		if e.followers == 0 && now.Sub(e.seen) > r.idle {
			delete(r.items, id)
			closed = append(closed, id)
		}
	}
	r.mu.Unlock()

	for _, id := range closed {
		r.publish(service.ActionDeleted, id)
	}
	return len(closed)
}

// Len returns the number of open dashboards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Navigated publishes a navigation event for id so live views refresh.
func (r *Registry) Navigated(id string) {
	r.publish(service.ActionNavigate, id)
}

// Changed publishes an update event for id.
func (r *Registry) Changed(id string) {
	r.publish(service.ActionUpdated, id)
}

func (r *Registry) publish(action, id string) {
	if r.bus != nil {
		r.bus.Publish(service.Event{Resource: service.ResourceDashboards, Action: action, ID: id})
	}
}
