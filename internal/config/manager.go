package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/nelsonlabs/morningreport/internal/logging"
)

// Manager holds the live configuration and hot-reloads it when the
// file changes. Provider chains are rebuilt by callers on the next
// request; in-flight work keeps the config it started with.
type Manager struct {
	mu      sync.RWMutex
	path    string
	config  *Config
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewManager loads the initial configuration from path.
func NewManager(path string) (*Manager, error) {
	config, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		path:   path,
		config: config,
		log:    logging.WithComponent("config"),
	}, nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := *m.config
	return &copied
}

// StartWatching reloads the configuration on file changes until ctx is
// canceled.
func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	m.log.Info().Str("path", m.path).Msg("watching config for changes")
	return nil
}

// Stop ends watching.
func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	fileName := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				m.reload()
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warn().Err(err).Msg("config watcher error")
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reload() {
	newConfig, err := Load(m.path)
	if err != nil {
		m.log.Error().Err(err).Msg("config reload failed, keeping previous config")
		return
	}
	if err := newConfig.Validate(); err != nil {
		m.log.Error().Err(err).Msg("reloaded config invalid, keeping previous config")
		return
	}

	m.mu.Lock()
	m.config = newConfig
	m.mu.Unlock()
	m.log.Info().Msg("configuration reloaded")
}
