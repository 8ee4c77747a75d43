package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
	fsw "github.com/corey/kwscan/internal/adapters/fsnotify"
	"github.com/corey/kwscan/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var (
	watchSource     keywordSource
	watchIgnoreCase bool
	watchWholeWord  bool
	watchColor      string
)

var watchCmd = &cobra.Command{
	Use:   "watch PATH",
	Short: "Rescan files as they change and print new matches",
	Long: "Watches a file or directory tree. Each time a file is written it is rescanned\n" +
		"and matches not seen in its previous version are printed. Stops on Ctrl-C.",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	watchSource.register(f)
	f.BoolVarP(&watchIgnoreCase, "ignore-case", "i", false, "ASCII case-insensitive matching")
	f.BoolVarP(&watchWholeWord, "word-regexp", "w", false, "Only whole-word matches")
	f.StringVar(&watchColor, "color", "auto", "Color output: auto, always, never")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths, settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	keywords, err := watchSource.resolve(root, paths, settings)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	ignoreCase := settings.IgnoreCase
	if f.Changed("ignore-case") {
		ignoreCase = watchIgnoreCase
	}
	opts := ahocorasick.ScanOptions{WholeWord: settings.WholeWord}
	if f.Changed("word-regexp") {
		opts.WholeWord = watchWholeWord
	}
	sc, err := ahocorasick.NewTextScanner(keywords, ahocorasick.Options{IgnoreCase: ignoreCase})
	if err != nil {
		return err
	}

	w, err := fsw.NewWatcher(settings.Extensions...)
	if err != nil {
		return err
	}
	defer w.Stop()

	rs := newRescanner(sc, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), resolveColor(watchColor))
	if err := w.Watch(args[0], rs.rescan); err != nil {
		return fmt.Errorf("watch %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "⚡ watching %s for %d keywords (Ctrl-C to stop)\n", args[0], sc.PatternCount())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}

// rescanner remembers the matches of each file's last version so only new
// ones are printed.
type rescanner struct {
	sc       *ahocorasick.TextScanner
	opts     ahocorasick.ScanOptions
	out      io.Writer
	errOut   io.Writer
	useColor bool

	mu   sync.Mutex
	seen map[string]map[string]int // path → hit key → occurrences
}

func newRescanner(sc *ahocorasick.TextScanner, opts ahocorasick.ScanOptions, out, errOut io.Writer, useColor bool) *rescanner {
	return &rescanner{
		sc:       sc,
		opts:     opts,
		out:      out,
		errOut:   errOut,
		useColor: useColor,
		seen:     make(map[string]map[string]int),
	}
}

// rescan is the watcher callback for one changed file.
func (r *rescanner) rescan(path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		r.mu.Lock()
		delete(r.seen, path)
		r.mu.Unlock()
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(r.errOut, "kwscan: %v\n", err)
		}
		return
	}

	hits := socket.Hits(r.sc, content, r.opts)
	lines := ahocorasick.NewLineIndex(content)

	// A hit is keyed by keyword and line text so edits elsewhere in the file
	// that shift offsets do not make old matches look new.
	current := make(map[string]int, len(hits))
	var fresh []socket.MatchHit
	r.mu.Lock()
	prev := r.seen[path]
	for _, h := range hits {
		key := h.Keyword + "\x00" + lines.Line(h.Line)
		current[key]++
		if current[key] > prev[key] {
			fresh = append(fresh, h)
		}
	}
	r.seen[path] = current
	r.mu.Unlock()

	if len(fresh) > 0 {
		io.WriteString(r.out, formatHits(path, fresh, lines, r.useColor))
	}
}
