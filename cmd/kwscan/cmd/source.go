package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/kwscan/internal/adapters/bbolt"
	"github.com/corey/kwscan/internal/app"
	"github.com/corey/kwscan/internal/ports"
	"github.com/spf13/pflag"
)

// keywordSource collects the -k/-f/-d flags shared by scan, trie and watch.
type keywordSource struct {
	keywords []string
	file     string
	dict     string
}

func (ks *keywordSource) register(f *pflag.FlagSet) {
	f.StringArrayVarP(&ks.keywords, "keyword", "k", nil, "Keyword to search for (repeatable)")
	f.StringVarP(&ks.file, "keywords-file", "f", "", "Read keywords from file, one per line")
	f.StringVarP(&ks.dict, "dict", "d", "", "Use a stored dictionary")
}

func (ks *keywordSource) explicit() bool {
	return len(ks.keywords) > 0 || ks.file != "" || ks.dict != ""
}

// resolve gathers keywords in flag order: -k, then -f, then -d. With no flags
// the configured keywords file or dictionary is used.
func (ks *keywordSource) resolve(root string, paths *app.Paths, settings app.Settings) ([]string, error) {
	if !ks.explicit() {
		if settings.KeywordsFile != "" {
			path := settings.KeywordsFile
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}
			return app.ReadKeywordsFile(path)
		}
		keywords, err := loadDictionary(root, paths, settings.Dictionary)
		if errors.Is(err, ports.ErrDictionaryNotFound) {
			return nil, fmt.Errorf("no keywords: pass -k, -f or -d (%w)", err)
		}
		return keywords, err
	}

	keywords := append([]string(nil), ks.keywords...)
	if ks.file != "" {
		fromFile, err := app.ReadKeywordsFile(ks.file)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, fromFile...)
	}
	if ks.dict != "" {
		fromDict, err := loadDictionary(root, paths, ks.dict)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, fromDict...)
	}
	return keywords, nil
}

// openStore opens the project's dictionary store, explaining lock contention.
func openStore(root string, paths *app.Paths) (*bbolt.Store, error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create %s: %w", paths.Root, err)
	}
	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if storeBusy(err) {
			return nil, errors.New(storeBusyHint(root))
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// loadDictionary reads one dictionary without creating a store that does not
// exist yet.
func loadDictionary(root string, paths *app.Paths, name string) ([]string, error) {
	if _, err := os.Stat(paths.DB); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ports.ErrDictionaryNotFound)
	}
	store, err := openStore(root, paths)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	keywords, err := store.LoadDictionary(name)
	if err != nil {
		return nil, err
	}
	if keywords == nil {
		return nil, fmt.Errorf("%s: %w", name, ports.ErrDictionaryNotFound)
	}
	return keywords, nil
}
