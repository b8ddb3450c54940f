package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tournament-engine/brackets"
	"github.com/Dosada05/tournament-engine/metrics"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/standings"
	"github.com/Dosada05/tournament-engine/utils"
)

// SnapshotSaver persists the snapshot of a tournament.
type SnapshotSaver interface {
	Save(ctx context.Context, t *models.Tournament) error
}

// SnapshotArchiver stores a snapshot copy somewhere durable and returns its
// location.
type SnapshotArchiver interface {
	Archive(ctx context.Context, t *models.Tournament) (string, error)
}

type ManagerOptions struct {
	IDs     utils.IDAllocator
	Pairing PairingEngine
	Ranker  Ranker
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Manager owns the set of tournaments of one process. The registry is safe
// for concurrent use; a single Event is not.
type Manager struct {
	ids     utils.IDAllocator
	pairing PairingEngine
	ranker  Ranker
	logger  *slog.Logger
	clock   func() time.Time

	mu     sync.RWMutex
	events map[string]*Event
	order  []string
}

func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		ids:     opts.IDs,
		pairing: opts.Pairing,
		ranker:  opts.Ranker,
		logger:  opts.Logger,
		clock:   opts.Clock,
		events:  make(map[string]*Event),
	}
	if m.ids == nil {
		m.ids = utils.RandomIDs{}
	}
	if m.pairing == nil {
		m.pairing = brackets.NewEngine()
	}
	if m.ranker == nil {
		m.ranker = standings.New()
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	return m
}

// NewTournament creates a tournament in registration. An empty id is
// allocated; an explicit one must not already be managed.
func (m *Manager) NewTournament(opts models.TournamentOptions) (*Event, error) {
	if opts.Format != "" && !opts.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err := models.ValidateTiebreakers(opts.Tiebreakers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if opts.PlayerLimit < 0 || opts.BestOf < 0 || opts.Rounds < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrInvalidOptions)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if opts.ID != "" {
		if _, taken := m.events[opts.ID]; taken {
			return nil, fmt.Errorf("%w: tournament %s", ErrDuplicateID, opts.ID)
		}
	} else {
		id, err := utils.UniqueID(m.ids, func(candidate string) bool {
			_, taken := m.events[candidate]
			return taken
		})
		if err != nil {
			return nil, fmt.Errorf("allocate tournament id: %w", err)
		}
		opts.ID = id
	}

	t := models.NewTournament(opts, m.clock())
	e, err := m.register(t)
	if err != nil {
		return nil, err
	}
	metrics.TournamentsCreated.WithLabelValues(string(t.Format)).Inc()
	e.logger.Info("tournament created", slog.String("name", t.Name))
	return e, nil
}

// Load takes over a tournament rebuilt from a snapshot.
func (m *Manager) Load(t *models.Tournament) (*Event, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tournament", models.ErrInvalidSnapshot)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.events[t.ID]; taken {
		return nil, fmt.Errorf("%w: tournament %s", ErrDuplicateID, t.ID)
	}
	e, err := m.register(t)
	if err != nil {
		return nil, err
	}
	e.logger.Info("tournament loaded",
		slog.String("status", string(t.Status)),
		slog.Int("players", len(t.Players)),
		slog.Int("matches", len(t.Matches)),
	)
	return e, nil
}

// LoadJSON decodes a snapshot and loads it.
func (m *Manager) LoadJSON(data []byte) (*Event, error) {
	var t models.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidSnapshot, err)
	}
	return m.Load(&t)
}

// register must be called with mu held.
func (m *Manager) register(t *models.Tournament) (*Event, error) {
	e, err := newEvent(t, m.pairing, m.ranker, m.ids, m.logger)
	if err != nil {
		return nil, err
	}
	m.events[t.ID] = e
	m.order = append(m.order, t.ID)
	return e, nil
}

func (m *Manager) Get(id string) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, id)
	}
	return e, nil
}

// List returns the managed tournaments in the order they were added.
func (m *Manager) List() []*Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Event, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.events[id])
	}
	return out
}

// Snapshot returns the JSON snapshot of a tournament.
func (m *Manager) Snapshot(id string) ([]byte, error) {
	e, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(e.Tournament())
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament %s: %w", id, err)
	}
	return data, nil
}

// Delete drops a tournament, aborting it first unless it already ended.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTournamentNotFound, id)
	}
	if !e.t.Status.Over() {
		if err := e.Abort(); err != nil {
			return err
		}
	}
	delete(m.events, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.logger.Info("tournament deleted", slog.String("tournament_id", id))
	return nil
}

// SaveAll persists every managed tournament concurrently and returns the
// first failure.
func (m *Manager) SaveAll(ctx context.Context, saver SnapshotSaver) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, e := range m.List() {
		t := e.Tournament()
		g.Go(func() error {
			if err := saver.Save(ctx, t); err != nil {
				return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	m.logger.Info("tournaments saved")
	return nil
}

// ArchiveAll archives every managed tournament concurrently. The returned
// map holds the location of each archived snapshot by tournament id.
func (m *Manager) ArchiveAll(ctx context.Context, archiver SnapshotArchiver) (map[string]string, error) {
	events := m.List()
	locations := make([]string, len(events))

	g, ctx := errgroup.WithContext(ctx)
	for i, e := range events {
		t := e.Tournament()
		g.Go(func() error {
			location, err := archiver.Archive(ctx, t)
			if err != nil {
				return fmt.Errorf("failed to archive tournament %s: %w", t.ID, err)
			}
			locations[i] = location
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(events))
	for i, e := range events {
		out[e.ID()] = locations[i]
	}
	return out, nil
}
