package ports

// Watcher monitors a file or directory for changes and triggers rescans.
// The adapter (fsnotify) must filter out noise (.git, editor swap files, etc.)
// before invoking onChange. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. A directory is watched recursively; a
	// single file is watched through its parent directory so that editors
	// which save by rename are still seen. onChange is called with the
	// absolute path of each changed file and may be invoked from any
	// goroutine. Returns an error if the path doesn't exist or permissions
	// are insufficient.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
