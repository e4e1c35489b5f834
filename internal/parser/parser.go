package parser

import (
	"strings"
	"time"

	regexp "github.com/grafana/regexp"

	"streamgate/internal/logger"
	"streamgate/internal/models"
)

// extinfRe matches the EXTINF grammar: a duration, zero or more key="value"
// attributes, then a comma-separated title.
var (
	extinfRe = regexp.MustCompile(`(?i)^#EXTINF:(-?\d+)\s*((?:\s+[a-z0-9\-]+="[^"]*")*)\s*,\s*(.*)$`)
	attrRe   = regexp.MustCompile(`(?i)([a-z0-9\-]+)="([^"]*)"`)
)

// ParseStats tracks parsing statistics
type ParseStats struct {
	ParsedEntries    int
	MalformedEntries int
	TotalLines       int
	Duration         time.Duration
	ErrorsByType     map[string]int
}

// Parser handles M3U playlist parsing
type Parser struct {
	logger *logger.Logger
	stats  ParseStats
}

// New creates a new parser instance
func New() *Parser {
	return &Parser{
		logger: logger.AppLogger(),
		stats: ParseStats{
			ErrorsByType: make(map[string]int),
		},
	}
}

// NewWithLogger creates a new parser instance with a custom logger
func NewWithLogger(log *logger.Logger) *Parser {
	return &Parser{
		logger: log,
		stats: ParseStats{
			ErrorsByType: make(map[string]int),
		},
	}
}

// pendingEntry holds a parsed EXTINF line waiting for its URL line
type pendingEntry struct {
	title      string
	duration   string
	attributes map[string]string
}

// Parse materializes every EXTINF + URL pair of the playlist text into
// entries. Malformed EXTINF lines and EXTINF lines without a following URL
// are skipped without aborting the parse.
func (p *Parser) Parse(text string) []models.PlaylistEntry {
	startTime := time.Now()

	var entries []models.PlaylistEntry
	var pending *pendingEntry

	for _, raw := range strings.Split(text, "\n") {
		p.stats.TotalLines++
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "#EXTINF:") {
			next := p.parseExtinf(line)
			if next == nil {
				// A malformed EXTINF leaves any armed entry in place
				p.stats.MalformedEntries++
				p.stats.ErrorsByType["invalid_extinf"]++
				continue
			}

			// A pending entry without URL is dropped silently
			if pending != nil {
				p.stats.MalformedEntries++
				p.stats.ErrorsByType["missing_url"]++
			}
			pending = next
			continue
		}

		// Skip other comments and blank lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// This is a URL line
		if pending == nil {
			p.stats.MalformedEntries++
			p.stats.ErrorsByType["orphan_url"]++
			continue
		}

		entries = append(entries, models.PlaylistEntry{
			Title:      pending.title,
			URL:        line,
			Attributes: pending.attributes,
			Group:      strings.TrimSpace(pending.attributes["group-title"]),
			ChannelID:  strings.TrimSpace(pending.attributes["tvg-id"]),
			Logo:       strings.TrimSpace(pending.attributes["tvg-logo"]),
		})
		p.stats.ParsedEntries++
		pending = nil
	}

	// Trailing EXTINF without URL
	if pending != nil {
		p.stats.MalformedEntries++
		p.stats.ErrorsByType["missing_url"]++
	}

	p.stats.Duration = time.Since(startTime)

	p.logger.WithFields(map[string]interface{}{
		"total_lines": p.stats.TotalLines,
		"parsed":      p.stats.ParsedEntries,
		"malformed":   p.stats.MalformedEntries,
	}).Debug("playlist parsing complete")

	return entries
}

// parseExtinf parses an EXTINF line; returns nil when the line does not
// match the expected grammar.
func (p *Parser) parseExtinf(line string) *pendingEntry {
	m := extinfRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	attributes := make(map[string]string)
	for _, kv := range attrRe.FindAllStringSubmatch(m[2], -1) {
		attributes[strings.ToLower(kv[1])] = kv[2]
	}

	return &pendingEntry{
		title:      strings.TrimSpace(m[3]),
		duration:   m[1],
		attributes: attributes,
	}
}

// GetStats returns the current parsing statistics
func (p *Parser) GetStats() ParseStats {
	return p.stats
}
