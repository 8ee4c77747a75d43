package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
	"github.com/corey/kwscan/internal/adapters/socket"
	"github.com/spf13/cobra"
)

var (
	scanSource     keywordSource
	scanIgnoreCase bool
	scanWholeWord  bool
	scanCountOnly  bool
	scanJSON       bool
	scanMaxCount   int
	scanDaemon     bool
	scanColor      string
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [file ...]",
	Short: "Find every keyword occurrence in files or stdin",
	Long: "Scans each file (or stdin when none, or for \"-\") once for all keywords.\n" +
		"Exit status: 0 if anything matched, 1 if nothing did, 2 on error.",
	Args:          cobra.ArbitraryArgs,
	RunE:          runScan,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := scanCmd.Flags()
	scanSource.register(f)
	f.BoolVarP(&scanIgnoreCase, "ignore-case", "i", false, "ASCII case-insensitive matching")
	f.BoolVarP(&scanWholeWord, "word-regexp", "w", false, "Only whole-word matches")
	f.BoolVarP(&scanCountOnly, "count", "c", false, "Print match counts only")
	f.BoolVar(&scanJSON, "json", false, "One JSON object per line")
	f.IntVarP(&scanMaxCount, "max-count", "m", 0, "Stop after N matches per input (0 = unlimited)")
	f.BoolVar(&scanDaemon, "daemon", false, "Scan with the running daemon's dictionary")
	f.StringVar(&scanColor, "color", "auto", "Color output: auto, always, never")
}

// scanFunc turns one input into resolved hits.
type scanFunc func(content []byte) ([]socket.MatchHit, error)

// scanOutput carries the presentation flags.
type scanOutput struct {
	countOnly bool
	json      bool
	color     bool
	showName  bool
}

func runScan(cmd *cobra.Command, args []string) error {
	stderr := cmd.ErrOrStderr()
	fail := func(err error) error {
		fmt.Fprintf(stderr, "kwscan: %v\n", err)
		return scanExit{2}
	}

	root := projectRoot()
	paths, settings, err := loadSettings(root)
	if err != nil {
		return fail(err)
	}

	f := cmd.Flags()
	ignoreCase := settings.IgnoreCase
	if f.Changed("ignore-case") {
		ignoreCase = scanIgnoreCase
	}
	opts := ahocorasick.ScanOptions{WholeWord: settings.WholeWord, MaxMatches: settings.MaxMatches}
	if f.Changed("word-regexp") {
		opts.WholeWord = scanWholeWord
	}
	if f.Changed("max-count") {
		if scanMaxCount < 0 {
			return fail(fmt.Errorf("--max-count must be >= 0"))
		}
		opts.MaxMatches = scanMaxCount
	}

	var scan scanFunc
	if scanDaemon {
		if scanSource.explicit() || f.Changed("ignore-case") {
			return fail(errors.New("--daemon scans with the daemon's dictionary; drop -k, -f, -d and -i"))
		}
		client := socket.NewClient(socket.SocketPath(root))
		if !client.Ping() {
			return fail(errors.New("daemon is not running (start it with: kwscan daemon start)"))
		}
		scan = daemonScan(client, opts)
	} else {
		keywords, err := scanSource.resolve(root, paths, settings)
		if err != nil {
			return fail(err)
		}
		scanner, err := ahocorasick.NewTextScanner(keywords, ahocorasick.Options{IgnoreCase: ignoreCase})
		if err != nil {
			return fail(err)
		}
		scan = localScan(scanner, opts)
	}

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	out := scanOutput{
		countOnly: scanCountOnly,
		json:      scanJSON,
		color:     !scanJSON && resolveColor(scanColor),
		showName:  len(inputs) > 1,
	}

	found, hadErr := false, false
	for _, name := range inputs {
		content, err := readInput(cmd.InOrStdin(), name)
		if err != nil {
			fmt.Fprintf(stderr, "kwscan: %v\n", err)
			hadErr = true
			continue
		}
		hits, err := scan(content)
		if err != nil {
			return fail(err)
		}
		if len(hits) > 0 {
			found = true
		}
		if err := writeHits(cmd.OutOrStdout(), displayName(name, out.showName), content, hits, out); err != nil {
			return fail(err)
		}
	}

	switch {
	case hadErr:
		return scanExit{2}
	case !found:
		return scanExit{1}
	}
	return nil
}

func localScan(sc *ahocorasick.TextScanner, opts ahocorasick.ScanOptions) scanFunc {
	return func(content []byte) ([]socket.MatchHit, error) {
		return socket.Hits(sc, content, opts), nil
	}
}

func daemonScan(client *socket.Client, opts ahocorasick.ScanOptions) scanFunc {
	return func(content []byte) ([]socket.MatchHit, error) {
		result, err := client.Scan(socket.ScanParams{
			Data:      content,
			WholeWord: opts.WholeWord,
			MaxCount:  opts.MaxMatches,
		})
		if err != nil {
			return nil, err
		}
		return result.Matches, nil
	}
}

// readInput reads a file, or stdin for "-".
func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func displayName(name string, show bool) string {
	switch {
	case !show:
		return ""
	case name == "-":
		return "(standard input)"
	}
	return name
}

func writeHits(w io.Writer, name string, content []byte, hits []socket.MatchHit, out scanOutput) error {
	if out.json {
		enc := json.NewEncoder(w)
		if out.countOnly {
			return enc.Encode(jsonCount{File: name, Count: len(hits)})
		}
		for _, h := range hits {
			if err := enc.Encode(newJSONHit(name, h)); err != nil {
				return err
			}
		}
		return nil
	}

	if out.countOnly {
		_, err := io.WriteString(w, formatCount(name, len(hits)))
		return err
	}
	_, err := io.WriteString(w, formatHits(name, hits, ahocorasick.NewLineIndex(content), out.color))
	return err
}
