package cmd

import (
	"fmt"

	"github.com/corey/kwscan/internal/app"
	"github.com/corey/kwscan/internal/domain/automaton"
	"github.com/spf13/cobra"
)

var (
	dictFile    string
	dictReplace bool
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage stored keyword dictionaries",
}

var dictAddCmd = &cobra.Command{
	Use:   "add NAME [keyword ...]",
	Short: "Add keywords to a dictionary (created if missing)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDictAdd,
}

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dictionaries",
	Args:  cobra.NoArgs,
	RunE:  runDictList,
}

var dictShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a dictionary's keywords, one per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runDictShow,
}

var dictRmCmd = &cobra.Command{
	Use:   "rm NAME",
	Short: "Delete a dictionary",
	Args:  cobra.ExactArgs(1),
	RunE:  runDictRm,
}

func init() {
	dictAddCmd.Flags().StringVarP(&dictFile, "keywords-file", "f", "", "Read keywords from file, one per line")
	dictAddCmd.Flags().BoolVar(&dictReplace, "replace", false, "Replace the dictionary instead of appending")

	dictCmd.AddCommand(dictAddCmd)
	dictCmd.AddCommand(dictListCmd)
	dictCmd.AddCommand(dictShowCmd)
	dictCmd.AddCommand(dictRmCmd)
}

func runDictAdd(cmd *cobra.Command, args []string) error {
	name, added := args[0], args[1:]
	if dictFile != "" {
		fromFile, err := app.ReadKeywordsFile(dictFile)
		if err != nil {
			return err
		}
		added = append(added, fromFile...)
	}
	if len(added) == 0 {
		return fmt.Errorf("no keywords given (pass them as arguments or with -f)")
	}

	root := projectRoot()
	store, err := openStore(root, app.NewPaths(root))
	if err != nil {
		return err
	}
	defer store.Close()

	var existing []string
	if !dictReplace {
		if existing, err = store.LoadDictionary(name); err != nil {
			return err
		}
	}
	keywords := mergeKeywords(existing, added)

	// Compile before saving so a bad list never reaches the store
	a, err := automaton.BuildStrings(keywords)
	if err != nil {
		return err
	}
	if err := store.SaveDictionary(name, keywords); err != nil {
		return err
	}

	stats := a.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ %s: %d keywords (%d new), %d trie nodes\n",
		name, stats.Keywords, stats.Keywords-len(existing), stats.Nodes)
	return nil
}

// mergeKeywords appends added to existing, skipping keywords already present.
func mergeKeywords(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, kw := range list {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

func runDictList(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	store, err := openStore(root, app.NewPaths(root))
	if err != nil {
		return err
	}
	defer store.Close()

	infos, err := store.ListDictionaries()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatDictionaries(infos))
	return nil
}

func runDictShow(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	keywords, err := loadDictionary(root, app.NewPaths(root), args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, kw := range keywords {
		fmt.Fprintln(w, kw)
	}
	return nil
}

func runDictRm(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	store, err := openStore(root, app.NewPaths(root))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteDictionary(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ %s removed\n", args[0])
	return nil
}
