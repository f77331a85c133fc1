package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/playmatatu/tablesim/internal/config"
	"github.com/playmatatu/tablesim/internal/game"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableLimit    = errors.New("table limit reached")
	ErrRunnerStopped = errors.New("table runner stopped")
)

type managedTable struct {
	runner *Runner
	cancel context.CancelFunc
}

// Manager owns every running table in this process.
type Manager struct {
	ctx    context.Context
	config *config.Config
	events EventPublisher
	sinks  []FrameSink

	tables map[string]*managedTable
	mu     sync.RWMutex
}

// NewManager creates a manager whose tables stop when ctx is cancelled.
func NewManager(ctx context.Context, cfg *config.Config, events EventPublisher, sinks ...FrameSink) *Manager {
	if events == nil {
		events = nopPublisher{}
	}
	return &Manager{
		ctx:    ctx,
		config: cfg,
		events: events,
		sinks:  sinks,
		tables: make(map[string]*managedTable),
	}
}

// AddSink registers a sink for tables created after the call.
func (m *Manager) AddSink(s FrameSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateTableToken() string {
	return "table_" + generateToken(8)
}

// Create racks a new table from the named preset and starts its runner.
// An empty preset uses the configured default.
func (m *Manager) Create(preset string) (*Runner, error) {
	if preset == "" {
		preset = m.config.TablePreset
	}
	tableCfg, err := game.PresetConfig(preset, m.config.TableWidth, m.config.TableHeight)
	if err != nil {
		return nil, err
	}
	world, err := game.NewWorld(tableCfg)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.MaxTables > 0 && len(m.tables) >= m.config.MaxTables {
		return nil, ErrTableLimit
	}

	token := generateTableToken()
	for m.tables[token] != nil {
		token = generateTableToken()
	}

	sinks := make([]FrameSink, len(m.sinks))
	copy(sinks, m.sinks)
	runner := NewRunner(token, preset, world, m.config.TickRateHz, m.events, sinks...)

	ctx, cancel := context.WithCancel(m.ctx)
	m.tables[token] = &managedTable{runner: runner, cancel: cancel}
	go runner.Run(ctx)

	log.Printf("[TABLE] created %s (preset=%s, %vx%v, active=%d)", token, preset, tableCfg.Bounds.Width, tableCfg.Bounds.Height, len(m.tables))
	return runner, nil
}

func (m *Manager) Get(token string) (*Runner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[token]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t.runner, nil
}

// Close stops a table and announces it.
func (m *Manager) Close(token string) error {
	m.mu.Lock()
	t, ok := m.tables[token]
	if ok {
		delete(m.tables, token)
	}
	m.mu.Unlock()

	if !ok {
		return ErrTableNotFound
	}
	t.cancel()
	<-t.runner.Done()

	m.events.PublishEvent(context.Background(), newEvent(EventClosed, token, nil))
	log.Printf("[TABLE] closed %s", token)
	return nil
}

// CloseAll stops every table, used on shutdown.
func (m *Manager) CloseAll() {
	for _, info := range m.List() {
		if err := m.Close(info.Token); err != nil && !errors.Is(err, ErrTableNotFound) {
			log.Printf("[TABLE] close %s: %v", info.Token, err)
		}
	}
}

// List returns the running tables, oldest first.
func (m *Manager) List() []TableInfo {
	m.mu.RLock()
	infos := make([]TableInfo, 0, len(m.tables))
	for _, t := range m.tables {
		infos = append(infos, t.runner.Info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].Token < infos[j].Token
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// StartIdleReaper closes tables nobody has touched for TableIdleMinutes.
func (m *Manager) StartIdleReaper(ctx context.Context, every time.Duration) {
	if m.config.TableIdleMinutes <= 0 {
		log.Println("[TABLE] idle reaper disabled")
		return
	}

	log.Println("[TABLE] idle reaper started")
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[TABLE] idle reaper stopping")
				return
			case now := <-ticker.C:
				if n := m.reapIdle(now); n > 0 {
					log.Printf("[TABLE] reaped %d idle tables", n)
				}
			}
		}
	}()
}

func (m *Manager) reapIdle(now time.Time) int {
	maxIdle := time.Duration(m.config.TableIdleMinutes) * time.Minute

	// Collect candidates under read lock
	m.mu.RLock()
	var idle []string
	for token, t := range m.tables {
		if now.Sub(t.runner.LastActivity()) >= maxIdle {
			idle = append(idle, token)
		}
	}
	m.mu.RUnlock()

	reaped := 0
	for _, token := range idle {
		if err := m.Close(token); err == nil {
			reaped++
		}
	}
	return reaped
}
