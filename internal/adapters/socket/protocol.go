// Package socket implements a JSON-over-Unix-socket protocol for the kwscan daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
)

// maxMessage bounds a single request or response line.
const maxMessage = 16 * 1024 * 1024

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/kwscan-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/kwscan-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodScan     = "scan"
	MethodHealth   = "health"
	MethodReload   = "reload"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ScanParams is the params for a scan request. Data travels as base64 so
// input that is not valid UTF-8 reaches the daemon byte for byte.
type ScanParams struct {
	Data      []byte `json:"data"`
	WholeWord bool   `json:"whole_word,omitempty"`
	MaxCount  int    `json:"max_count,omitempty"`
}

// ScanResult is the result of a scan request.
type ScanResult struct {
	Matches []MatchHit `json:"matches"`
	Count   int        `json:"count"`
	Elapsed string     `json:"elapsed"`
}

// MatchHit is a single keyword occurrence. Start and End are byte offsets,
// End exclusive; Line and Column are 1-based.
type MatchHit struct {
	Keyword string
	Start   int
	End     int
	Line    int
	Column  int
}

// matchHitWire is MatchHit on the wire. A keyword that is not valid UTF-8
// would be mangled by encoding/json, so it travels as base64 in KeywordBytes.
type matchHitWire struct {
	Keyword      string `json:"keyword,omitempty"`
	KeywordBytes []byte `json:"keyword_bytes,omitempty"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
}

func (h MatchHit) MarshalJSON() ([]byte, error) {
	w := matchHitWire{Start: h.Start, End: h.End, Line: h.Line, Column: h.Column}
	if utf8.ValidString(h.Keyword) {
		w.Keyword = h.Keyword
	} else {
		w.KeywordBytes = []byte(h.Keyword)
	}
	return json.Marshal(w)
}

func (h *MatchHit) UnmarshalJSON(data []byte) error {
	var w matchHitWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*h = MatchHit{Keyword: w.Keyword, Start: w.Start, End: w.End, Line: w.Line, Column: w.Column}
	if w.KeywordBytes != nil {
		h.Keyword = string(w.KeywordBytes)
	}
	return nil
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status       string  `json:"status"`
	Dictionary   string  `json:"dictionary"`
	KeywordCount int     `json:"keyword_count"`
	NodeCount    int     `json:"node_count"`
	Reloads      int64   `json:"reloads"`
	Uptime       string  `json:"uptime"`
	ScanMBps     float64 `json:"scan_mbps"`    // median over RecentScans
	RecentScans  int     `json:"recent_scans"` // scans of at least 4 KiB in the last 5 minutes
}

// ReloadResult is the result of a reload request.
type ReloadResult struct {
	Dictionary   string `json:"dictionary"`
	KeywordCount int    `json:"keyword_count"`
}

// Hits scans content and resolves each match to its keyword and 1-based
// line/column.
func Hits(sc *ahocorasick.TextScanner, content []byte, opts ahocorasick.ScanOptions) []MatchHit {
	matches := sc.Scan(content, opts)
	lines := ahocorasick.NewLineIndex(content)

	hits := make([]MatchHit, len(matches))
	for i, m := range matches {
		pos := lines.Position(m.Start)
		hits[i] = MatchHit{
			Keyword: sc.Pattern(m.PatternIndex),
			Start:   m.Start,
			End:     m.End,
			Line:    pos.Line,
			Column:  pos.Column,
		}
	}
	return hits
}
