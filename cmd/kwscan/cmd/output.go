package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/corey/kwscan/internal/adapters/ahocorasick"
	"github.com/corey/kwscan/internal/adapters/socket"
	"github.com/corey/kwscan/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// jsonHit is one line of --json output.
type jsonHit struct {
	File    string `json:"file,omitempty"`
	Keyword string `json:"keyword"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func newJSONHit(file string, h socket.MatchHit) jsonHit {
	return jsonHit{File: file, Keyword: h.Keyword, Start: h.Start, End: h.End, Line: h.Line, Column: h.Column}
}

// jsonCount is one line of --json --count output.
type jsonCount struct {
	File  string `json:"file,omitempty"`
	Count int    `json:"count"`
}

// paint wraps s in color when enabled.
func paint(enabled bool, color, s string) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}

// isStdoutTTY returns true if stdout is connected to a terminal.
func isStdoutTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// resolveColor maps --color (auto, always, never) to a decision.
func resolveColor(colorFlag string) bool {
	switch colorFlag {
	case "always":
		return true
	case "never":
		return false
	default:
		return isStdoutTTY()
	}
}

// formatHits renders matches grep-style, one per line:
//
//	file:line:col: keyword  matching line text
func formatHits(name string, hits []socket.MatchHit, li *ahocorasick.LineIndex, useColor bool) string {
	var sb strings.Builder
	for _, h := range hits {
		if name != "" {
			sb.WriteString(paint(useColor, colorCyan, name))
			sb.WriteString(":")
		}
		sb.WriteString(fmt.Sprintf("%d:%d: %s", h.Line, h.Column, paint(useColor, colorGreen, h.Keyword)))
		if li != nil {
			sb.WriteString("  ")
			sb.WriteString(paint(useColor, colorGray, li.Line(h.Line)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatCount renders a -c result.
func formatCount(name string, n int) string {
	if name == "" {
		return fmt.Sprintf("%d\n", n)
	}
	return fmt.Sprintf("%s:%d\n", name, n)
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ kwscan daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:     %s%s%s\n", colorGreen, h.Status, colorReset))
	sb.WriteString(fmt.Sprintf("  Dictionary: %s%s%s\n", colorMagenta, h.Dictionary, colorReset))
	sb.WriteString(fmt.Sprintf("  Keywords:   %d\n", h.KeywordCount))
	sb.WriteString(fmt.Sprintf("  Nodes:      %d\n", h.NodeCount))
	sb.WriteString(fmt.Sprintf("  Reloads:    %d\n", h.Reloads))
	sb.WriteString(fmt.Sprintf("  Uptime:     %s\n", h.Uptime))
	if h.RecentScans > 0 {
		sb.WriteString(fmt.Sprintf("  Throughput: %.1f MB/s (median of %d recent scans)\n", h.ScanMBps, h.RecentScans))
	}
	return sb.String()
}

// formatDictionaries formats the dict list table.
func formatDictionaries(infos []ports.DictionaryInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d dictionaries%s\n", colorBold, len(infos), colorReset))
	for _, info := range infos {
		updated := "-"
		if !info.UpdatedAt.IsZero() {
			updated = info.UpdatedAt.Local().Format(time.DateTime)
		}
		sb.WriteString(fmt.Sprintf("  %s%-20s%s %6d keywords  %s%s%s\n",
			colorCyan, info.Name, colorReset, info.KeywordCount, colorGray, updated, colorReset))
	}
	return sb.String()
}
