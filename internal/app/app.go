// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the kwscan daemon: create, start, stop.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
	"github.com/corey/kwscan/internal/adapters/bbolt"
	fsw "github.com/corey/kwscan/internal/adapters/fsnotify"
	"github.com/corey/kwscan/internal/adapters/socket"
	"github.com/corey/kwscan/internal/ports"
	"go.uber.org/zap"
)

var _ socket.Backend = (*App)(nil)

// App is the daemon: one dictionary compiled into one shared automaton,
// served over the socket and optionally kept in sync with a keywords file.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Settings    Settings

	Matcher *ahocorasick.Matcher
	Server  *socket.Server
	Watcher *fsw.Watcher // nil unless Settings.KeywordsFile is set
	Log     *zap.Logger

	// The store is opened only for the duration of a reload, so CLI
	// commands can edit dictionaries while the daemon runs.
	dbPath string

	reloadMu sync.Mutex // serializes Reload; scans never take it
	reloads  atomic.Int64

	timerMu     sync.Mutex
	reloadTimer *time.Timer // pending reload after a keywords file change
	stopped     bool
}

// reloadSettle delays a file-triggered reload until a burst of writes has
// finished, so a half-written file is never compiled.
const reloadSettle = 100 * time.Millisecond

// Config holds everything New needs.
type Config struct {
	ProjectRoot string
	Settings    Settings
	DBPath      string      // default: .kwscan/kwscan.db
	SocketPath  string      // default: socket.SocketPath(ProjectRoot)
	Logger      *zap.Logger // default: no-op
}

// New creates an App with all dependencies wired. Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	paths := NewPaths(cfg.ProjectRoot)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create %s: %w", paths.Root, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = paths.DB
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = socket.SocketPath(cfg.ProjectRoot)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		Paths:       paths,
		Settings:    cfg.Settings,
		Matcher:     &ahocorasick.Matcher{IgnoreCase: cfg.Settings.IgnoreCase},
		Log:         cfg.Logger,
		dbPath:      cfg.DBPath,
	}
	// Create the file and buckets now so a broken store fails New, not the
	// first reload.
	if err := a.withStore(func(*bbolt.Store) error { return nil }); err != nil {
		return nil, err
	}
	a.Server = socket.NewServer(a, cfg.SocketPath, cfg.Logger)

	if cfg.Settings.KeywordsFile != "" {
		w, err := fsw.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		a.Watcher = w
	}
	return a, nil
}

// Scanner returns the active automaton; nil until the first successful Reload.
func (a *App) Scanner() *ahocorasick.TextScanner {
	return a.Matcher.Scanner()
}

// Dictionary returns the name of the served dictionary.
func (a *App) Dictionary() string {
	return a.Settings.Dictionary
}

// keywordsFile resolves Settings.KeywordsFile against the project root.
func (a *App) keywordsFile() string {
	f := a.Settings.KeywordsFile
	if f == "" || filepath.IsAbs(f) {
		return f
	}
	return filepath.Join(a.ProjectRoot, f)
}

// Reloads returns the number of successful reloads since Start, whether
// requested over the socket or triggered by the keywords file.
func (a *App) Reloads() int64 {
	return a.reloads.Load()
}

// withStore opens the dictionary store for the duration of fn.
func (a *App) withStore(fn func(*bbolt.Store) error) error {
	store, err := bbolt.NewStore(a.dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// Reload recompiles the automaton. With a keywords file configured, the file
// is read and persisted into the store first; otherwise the dictionary is
// read from the store. The new automaton is installed only once everything
// else has succeeded: on any error the previous one keeps serving and the
// store is unchanged.
func (a *App) Reload() (socket.ReloadResult, error) {
	result, err := a.reload()
	if err != nil {
		return result, err
	}
	a.reloads.Add(1)
	return result, nil
}

func (a *App) reload() (socket.ReloadResult, error) {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	name := a.Settings.Dictionary
	keywords, err := a.loadKeywords(name)
	if err != nil {
		return socket.ReloadResult{}, err
	}
	sc, err := a.Matcher.Compile(keywords)
	if err != nil {
		return socket.ReloadResult{}, fmt.Errorf("%s: %w", name, err)
	}
	if a.keywordsFile() != "" {
		err := a.withStore(func(store *bbolt.Store) error {
			return store.SaveDictionary(name, keywords)
		})
		if err != nil {
			return socket.ReloadResult{}, fmt.Errorf("save %s: %w", name, err)
		}
	}
	a.Matcher.Install(sc)

	return socket.ReloadResult{
		Dictionary:   name,
		KeywordCount: sc.Automaton().Stats().Keywords,
	}, nil
}

func (a *App) loadKeywords(name string) ([]string, error) {
	if path := a.keywordsFile(); path != "" {
		return ReadKeywordsFile(path)
	}
	var keywords []string
	err := a.withStore(func(store *bbolt.Store) error {
		var err error
		keywords, err = store.LoadDictionary(name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if keywords == nil {
		return nil, fmt.Errorf("%s: %w", name, ports.ErrDictionaryNotFound)
	}
	return keywords, nil
}

// Start loads the dictionary and begins the daemon (socket server + keywords
// file watcher).
func (a *App) Start() error {
	result, err := a.reload()
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}
	a.Log.Info("dictionary loaded",
		zap.String("dict", result.Dictionary),
		zap.Int("keywords", result.KeywordCount))

	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	if err := a.Paths.WritePID(os.Getpid()); err != nil {
		a.Log.Warn("write pid file", zap.Error(err))
	}

	// Keywords file watcher, non-fatal if setup fails
	if a.Watcher != nil {
		if err := a.Watcher.Watch(a.keywordsFile(), a.onKeywordsFileChanged); err != nil {
			a.Log.Warn("keywords file watcher unavailable",
				zap.String("file", a.keywordsFile()), zap.Error(err))
		}
	}
	return nil
}

// Stop gracefully shuts down all services.
func (a *App) Stop() error {
	a.timerMu.Lock()
	a.stopped = true
	if a.reloadTimer != nil {
		a.reloadTimer.Stop()
	}
	a.timerMu.Unlock()

	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	a.Server.Stop()
	a.Paths.CleanEphemeral()

	// Wait out an in-flight reload so it never outlives the daemon
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()
	a.Log.Sync()
	return nil
}

// onKeywordsFileChanged schedules a reload once the file has settled.
func (a *App) onKeywordsFileChanged(path string) {
	a.timerMu.Lock()
	defer a.timerMu.Unlock()

	if a.stopped {
		return
	}
	if a.reloadTimer != nil {
		a.reloadTimer.Stop()
	}
	a.reloadTimer = time.AfterFunc(reloadSettle, func() { a.reloadAfterChange(path) })
}

// reloadAfterChange reloads after an edit of the keywords file. A broken
// file (unreadable, deleted) leaves the previous automaton in place.
func (a *App) reloadAfterChange(path string) {
	a.timerMu.Lock()
	stopped := a.stopped
	a.timerMu.Unlock()
	if stopped {
		return
	}

	result, err := a.Reload()
	if err != nil {
		a.Log.Error("reload after change failed", zap.String("file", path), zap.Error(err))
		return
	}
	a.Log.Info("reloaded after change",
		zap.String("file", path),
		zap.String("dict", result.Dictionary),
		zap.Int("keywords", result.KeywordCount))
}
