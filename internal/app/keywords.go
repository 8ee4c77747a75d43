package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadKeywords parses a keyword list: one keyword per line, surrounding
// whitespace trimmed, blank lines and lines starting with '#' skipped.
// A leading `\#` yields a literal '#'.
func ReadKeywords(r io.Reader) ([]string, error) {
	var keywords []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, `\#`) {
			line = line[1:]
		}
		keywords = append(keywords, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return keywords, nil
}

// ReadKeywordsFile reads a keyword list from path.
func ReadKeywordsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keywords, err := ReadKeywords(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return keywords, nil
}
