// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches a single file or a directory tree, filters out VCS/tooling noise,
// and debounces rapid events (editors often trigger multiple writes per save).
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corey/kwscan/internal/ports"
	"github.com/fsnotify/fsnotify"
)

var _ ports.Watcher = (*Watcher)(nil)

// Directories to ignore when watching.
var ignoreDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
	".kwscan":      true,
}

// File names/suffixes to ignore.
var ignoreFiles = map[string]bool{
	".DS_Store": true,
	".swp":      true,
	".swx":      true,
	"~":         true,
	".tmp":      true,
}

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw         *fsnotify.Watcher
	extensions map[string]bool // empty = every file
	done       chan struct{}
	stopped    bool
	mu         sync.Mutex
}

// NewWatcher creates a new file system watcher. If extensions are given
// (".txt", ".log"), only files with one of them trigger onChange.
func NewWatcher(extensions ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[strings.ToLower(e)] = true
	}
	return &Watcher{
		fw:         fw,
		extensions: exts,
		done:       make(chan struct{}),
	}, nil
}

// Watch starts monitoring path. Directories are watched recursively; a file
// is watched through its parent directory and only its own events fire.
// onChange is called with the absolute path of each changed file.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	only := ""
	if info.IsDir() {
		err = filepath.Walk(absPath, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return nil // skip inaccessible paths
			}
			if fi.IsDir() {
				if shouldIgnoreDir(fi.Name()) && p != absPath {
					return filepath.SkipDir
				}
				return w.fw.Add(p)
			}
			return nil
		})
	} else {
		only = absPath
		err = w.fw.Add(filepath.Dir(absPath))
	}
	if err != nil {
		return err
	}

	go w.loop(only, onChange)
	return nil
}

func (w *Watcher) loop(only string, onChange func(string)) {
	// Trailing debounce: onChange fires once a path has been quiet for
	// debounceInterval, so it always sees the last write of a burst.
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			path := event.Name

			if only != "" {
				if path != only {
					continue
				}
			} else if event.Has(fsnotify.Create) {
				// New directories join the watch list
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if !shouldIgnoreDir(info.Name()) {
						w.fw.Add(path)
					}
					continue
				}
			}

			if shouldIgnorePath(path) || !w.matchesExtension(path) {
				continue
			}

			if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
				continue
			}
			if t, ok := pending[path]; ok {
				// Reset also re-arms a timer that already fired
				t.Reset(debounceInterval)
				continue
			}
			pending[path] = time.AfterFunc(debounceInterval, func() {
				select {
				case <-w.done:
					return
				default:
				}
				onChange(path)
			})

		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Errors are swallowed; fsnotify recovers automatically

		case <-w.done:
			return
		}
	}
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) matchesExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// shouldIgnoreDir returns true if the directory name should be skipped.
func shouldIgnoreDir(name string) bool {
	return ignoreDirs[name]
}

// shouldIgnorePath returns true if the file path should not trigger onChange.
func shouldIgnorePath(path string) bool {
	base := filepath.Base(path)

	if ignoreFiles[base] {
		return true
	}
	for suffix := range ignoreFiles {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	// Check if any path component is an ignored directory
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}
