// Package monitor binds the telemetry loops of one router screen to the screen's
// visibility. The owner calls OnScreenFocused and OnScreenBlurred; everything else
// is read-only access to the latest data.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/weperezh01/router-telemetry/model"
	"github.com/weperezh01/router-telemetry/poller"
	"github.com/weperezh01/router-telemetry/snapshot"
	"github.com/weperezh01/router-telemetry/traffic"
	"golang.org/x/sync/errgroup"
)

// Source is the remote backend as seen by a screen.
type Source interface {
	GetRouter(ctx context.Context, id model.ID) (model.RouterIdentity, error)
	GetSystemResources(ctx context.Context, id model.ID) (model.SystemResources, error)
	GetInterfaces(ctx context.Context, id model.ID) (model.InterfaceList, error)
	GetTraffic(ctx context.Context, id model.ID) ([]model.TrafficSample, error)
}

const (
	DefaultResourcesInterval = 30 * time.Second
	DefaultTrafficInterval   = 3 * time.Second
)

type Options struct {
	ResourcesInterval time.Duration
	TrafficInterval   time.Duration
	// RequestTimeout caps every poll request in addition to the loop interval.
	RequestTimeout time.Duration
	Clock          poller.Clock
	Logger         zerolog.Logger
}

var ErrNoIdentity = errors.New("router identity not available")

type Monitor struct {
	id      model.ID
	session string
	source  Source
	log     zerolog.Logger

	resources *poller.Loop[model.ResourceSnapshot]
	traffic   *poller.Loop[[]model.TrafficSample]
	index     *traffic.Index

	// loadMu serializes the one-time static fetch.
	loadMu sync.Mutex

	mu               sync.RWMutex
	focused          bool
	identity         *model.RouterIdentity
	interfaces       *model.InterfaceList
	interfacesErrMsg string
}

func New(id model.ID, source Source, opts Options) *Monitor {
	if opts.ResourcesInterval <= 0 {
		opts.ResourcesInterval = DefaultResourcesInterval
	}
	if opts.TrafficInterval <= 0 {
		opts.TrafficInterval = DefaultTrafficInterval
	}

	session := uuid.NewString()
	m := &Monitor{
		id:      id,
		session: session,
		source:  source,
		log:     opts.Logger.With().Str("router", string(id)).Str("session", session).Logger(),
		index:   traffic.NewIndex(),
	}

	m.resources = poller.New(poller.Options[model.ResourceSnapshot]{
		Name:     "resources",
		Interval: opts.ResourcesInterval,
		Timeout:  opts.RequestTimeout,
		Fetch:    m.fetchResources,
		Clock:    opts.Clock,
		Logger:   m.log,
	})
	m.traffic = poller.New(poller.Options[[]model.TrafficSample]{
		Name:      "traffic",
		Interval:  opts.TrafficInterval,
		Timeout:   opts.RequestTimeout,
		Fetch:     m.fetchTraffic,
		OnSuccess: m.index.Rebuild,
		Clock:     opts.Clock,
		Logger:    m.log,
	})

	return m
}

func (m *Monitor) fetchResources(ctx context.Context) (model.ResourceSnapshot, error) {
	payload, err := m.source.GetSystemResources(ctx, m.id)
	if err != nil {
		return model.ResourceSnapshot{}, fmt.Errorf("could not refresh system resources: %w", err)
	}
	return snapshot.Map(payload), nil
}

func (m *Monitor) fetchTraffic(ctx context.Context) ([]model.TrafficSample, error) {
	samples, err := m.source.GetTraffic(ctx, m.id)
	if err != nil {
		return nil, fmt.Errorf("could not refresh interface traffic: %w", err)
	}
	return samples, nil
}

// OnScreenFocused loads the static router data if needed and starts both loops.
// Without a router identity nothing is started and the error is returned.
// Calling it while already focused has no further effect.
func (m *Monitor) OnScreenFocused(ctx context.Context) error {
	m.mu.Lock()
	m.focused = true
	m.mu.Unlock()

	if err := m.loadStatic(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.focused {
		m.log.Debug().Msg("screen blurred while loading, not starting loops")
		return nil
	}
	m.resources.Start()
	m.traffic.Start()
	m.log.Info().Msg("screen focused, polling started")
	return nil
}

// OnScreenBlurred stops both loops. In-flight results are discarded.
func (m *Monitor) OnScreenBlurred() {
	m.mu.Lock()
	wasFocused := m.focused
	m.focused = false
	m.mu.Unlock()

	m.resources.Stop()
	m.traffic.Stop()
	if wasFocused {
		m.log.Info().Msg("screen blurred, polling stopped")
	}
}

// loadStatic fetches the router identity and interface list concurrently. Each is
// fetched once per screen; a failed part is retried on the next focus.
func (m *Monitor) loadStatic(ctx context.Context) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	m.mu.RLock()
	needIdentity := m.identity == nil
	needInterfaces := m.interfaces == nil
	m.mu.RUnlock()

	if !needIdentity && !needInterfaces {
		return nil
	}

	// The group carries only the identity error: a failed interface list is
	// recorded and must not cancel or fail the identity fetch.
	var (
		g             errgroup.Group
		identity      model.RouterIdentity
		interfaces    model.InterfaceList
		interfacesErr error
	)
	if needIdentity {
		g.Go(func() error {
			var err error
			identity, err = m.source.GetRouter(ctx, m.id)
			return err
		})
	}
	if needInterfaces {
		g.Go(func() error {
			interfaces, interfacesErr = m.source.GetInterfaces(ctx, m.id)
			return nil
		})
	}
	identityErr := g.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()

	if needInterfaces {
		if interfacesErr != nil {
			m.interfacesErrMsg = interfacesErr.Error()
			m.log.Warn().Err(interfacesErr).Msg("could not load interfaces")
		} else {
			m.interfaces = &interfaces
			m.interfacesErrMsg = ""
		}
	}

	if needIdentity {
		if identityErr != nil {
			m.log.Error().Err(identityErr).Msg("could not load router")
			return fmt.Errorf("%w: %w", ErrNoIdentity, identityErr)
		}
		m.identity = &identity
	}
	return nil
}

func (m *Monitor) Session() string {
	return m.session
}

func (m *Monitor) RouterID() model.ID {
	return m.id
}

func (m *Monitor) Focused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.focused
}

func (m *Monitor) Identity() (model.RouterIdentity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return model.RouterIdentity{}, false
	}
	return *m.identity, true
}

// InterfaceList returns the static interface data and the error of the last
// failed attempt to load it, if any.
func (m *Monitor) InterfaceList() (model.InterfaceList, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.interfaces == nil {
		return model.InterfaceList{}, m.interfacesErrMsg
	}
	return *m.interfaces, ""
}

func (m *Monitor) Snapshot() (model.ResourceSnapshot, bool) {
	return m.resources.Current()
}

// HasTraffic reports whether any traffic poll of this screen has succeeded,
// including polls from before the last blur.
func (m *Monitor) HasTraffic() bool {
	_, ok := m.traffic.Current()
	return ok
}

func (m *Monitor) Traffic(name string) model.TrafficSample {
	return m.index.Lookup(name)
}

// Rows joins the static interfaces with the latest traffic samples.
func (m *Monitor) Rows() []traffic.Row {
	list, _ := m.InterfaceList()
	return m.index.Join(list.Interfaces)
}

func (m *Monitor) ResourceState() poller.PollState {
	return m.resources.State()
}

func (m *Monitor) TrafficState() poller.PollState {
	return m.traffic.State()
}
