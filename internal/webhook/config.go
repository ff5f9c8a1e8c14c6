package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Conf represents the dynamic configuration of the webhook service.
type Conf struct {
	// WatchedFileKeys restricts dispatching to known Figma files.
	// An empty list allows every file.
	WatchedFileKeys []string `json:"watchedFileKeys"`
}

// ConfigManager loads and watches the dynamic configuration file.
type ConfigManager struct {
	config     Conf
	lock       sync.RWMutex
	configPath string

	log *slog.Logger
}

type configOptions struct {
	Logger *slog.Logger
}

// ConfigOptions represents an optional function to override ConfigManager default values.
type ConfigOptions func(*configOptions)

// WithConfigLogger overrides the logger used by the configuration manager.
func WithConfigLogger(l *slog.Logger) ConfigOptions {
	return func(o *configOptions) {
		o.Logger = l
	}
}

// NewConfigManager creates a new configuration manager with the specified path.
func NewConfigManager(path string, args ...ConfigOptions) *ConfigManager {
	opts := configOptions{
		Logger: slog.Default(),
	}

	for _, opt := range args {
		opt(&opts)
	}

	return &ConfigManager{
		configPath: path,
		log:        opts.Logger,
	}
}

// Load reads the configuration from the specified file and updates the internal state.
// A missing file is not an error: the service then dispatches for every file key.
func (cm *ConfigManager) Load() error {
	file, err := os.Open(cm.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cm.log.Warn("No dynamic configuration file, allowing all file keys", "path", cm.configPath)
			cm.lock.Lock()
			cm.config = Conf{}
			cm.lock.Unlock()
			return nil
		}
		return fmt.Errorf("opening config file: %w", err)
	}
	defer file.Close()

	var newConfig Conf
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&newConfig); err != nil {
		return fmt.Errorf("decoding config JSON: %w", err)
	}

	cm.lock.Lock()
	cm.config = newConfig
	cm.lock.Unlock()

	cm.log.Info("Configuration loaded", "config", cm.config)
	return nil
}

// IsAllowed reports whether events for the given file key should be dispatched.
func (cm *ConfigManager) IsAllowed(fileKey string) bool {
	cm.lock.RLock()
	defer cm.lock.RUnlock()

	if len(cm.config.WatchedFileKeys) == 0 {
		return true
	}
	for _, k := range cm.config.WatchedFileKeys {
		if k == fileKey {
			return true
		}
	}
	return false
}

// Watch starts watching the configuration file for changes.
//
// It returns two channels: one for configuration changes which result in a successful load and another for unrecoverable watcher errors.
func (cm *ConfigManager) Watch(ctx context.Context) (changes <-chan struct{}, errors <-chan error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %v", err)
	}

	configDir, _ := filepath.Split(cm.configPath)
	if configDir == "" {
		configDir = "."
	}
	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("failed to add directory %s to watcher: %v", configDir, err)
	}

	cm.log.Info("Watching configuration directory", "dir", configDir)
	changesCh := make(chan struct{}, 1)
	errorsCh := make(chan error, 1)

	go func() {
		defer close(changesCh)
		defer close(errorsCh)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				cm.log.Info("Configuration watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					errorsCh <- fmt.Errorf("watcher events channel closed unexpectedly")
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				if event.Name != cm.configPath {
					continue
				}

				cm.log.Debug("Configuration file changed. Reloading...")
				if err := cm.Load(); err != nil {
					cm.log.Warn("Failed to reload configuration", "err", err)
					continue
				}

				select {
				case changesCh <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					errorsCh <- fmt.Errorf("watcher errors channel closed unexpectedly")
					return
				}
				cm.log.Warn("Configuration watcher error", "err", err)
			}
		}
	}()

	return changesCh, errorsCh, nil
}
