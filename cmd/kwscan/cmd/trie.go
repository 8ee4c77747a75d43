package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
	"github.com/corey/kwscan/internal/domain/automaton"
	"github.com/spf13/cobra"
)

var (
	trieSource     keywordSource
	trieIgnoreCase bool
	trieDepth      int
	trieFlat       bool
	trieColor      string
)

var trieCmd = &cobra.Command{
	Use:   "trie",
	Short: "Print the compiled keyword trie",
	Long: "Builds the automaton and prints its trie. Terminal nodes show their keyword;\n" +
		"\"⇢\" marks a failure link that does not point back to the root.",
	Args: cobra.NoArgs,
	RunE: runTrie,
}

func init() {
	f := trieCmd.Flags()
	trieSource.register(f)
	f.BoolVarP(&trieIgnoreCase, "ignore-case", "i", false, "Show the case-folded trie")
	f.IntVar(&trieDepth, "depth", 0, "Max depth (0 = unlimited)")
	f.BoolVar(&trieFlat, "flat", false, "One line per node with raw indices")
	f.StringVar(&trieColor, "color", "auto", "Color output: auto, always, never")
}

func runTrie(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths, settings, err := loadSettings(root)
	if err != nil {
		return err
	}
	keywords, err := trieSource.resolve(root, paths, settings)
	if err != nil {
		return err
	}
	ignoreCase := settings.IgnoreCase
	if cmd.Flags().Changed("ignore-case") {
		ignoreCase = trieIgnoreCase
	}
	sc, err := ahocorasick.NewTextScanner(keywords, ahocorasick.Options{IgnoreCase: ignoreCase})
	if err != nil {
		return err
	}

	a := sc.Automaton()
	if trieFlat {
		fmt.Fprint(cmd.OutOrStdout(), formatTrieFlat(a))
		return nil
	}

	stats := a.Stats()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("(root)  %d keywords, %d nodes, depth %d\n", stats.Keywords, stats.Nodes, stats.MaxDepth))
	writeTrie(&sb, a, 0, "", resolveColor(trieColor), trieDepth)
	fmt.Fprint(cmd.OutOrStdout(), sb.String())
	return nil
}

// writeTrie draws the children of node i, directory-tree style.
func writeTrie(sb *strings.Builder, a *automaton.Automaton[byte], i int, prefix string, useColor bool, maxDepth int) {
	children := a.Children(i)
	for n, c := range children {
		isLast := n == len(children)-1
		connector := "├── "
		if isLast {
			connector = "└── "
		}

		v, _ := a.Node(c)
		sb.WriteString(prefix + connector + symbolText(v.Symbol))
		if v.IsTerminal() {
			sb.WriteString("  " + paint(useColor, colorGreen, "["+strconv.Quote(string(a.Path(c)))+"]"))
		}
		if v.Fail != 0 {
			sb.WriteString("  " + paint(useColor, colorGray, "⇢ "+strconv.Quote(string(a.Path(v.Fail)))))
		}
		sb.WriteString("\n")

		if maxDepth == 0 || v.Depth < maxDepth {
			next := prefix + "│   "
			if isLast {
				next = prefix + "    "
			}
			writeTrie(sb, a, c, next, useColor, maxDepth)
		}
	}
}

// formatTrieFlat lists every node in depth-first order with its links.
func formatTrieFlat(a *automaton.Automaton[byte]) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%5s %5s %5s %5s %7s  %s\n", "node", "depth", "fail", "out", "keyword", "path"))
	a.Walk(func(v automaton.NodeView[byte]) bool {
		sb.WriteString(fmt.Sprintf("%5d %5d %5d %5d %7d  %s\n",
			v.Index, v.Depth, v.Fail, v.Output, v.Keyword, strconv.Quote(string(a.Path(v.Index)))))
		return true
	})
	return sb.String()
}

// symbolText renders one trie edge byte; non-printable bytes are escaped.
func symbolText(b byte) string {
	if b > ' ' && b < 0x7f {
		return string(b)
	}
	return fmt.Sprintf(`\x%02x`, b)
}
