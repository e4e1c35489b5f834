package parser

import (
	"testing"
)

func TestParseValidPlaylist(t *testing.T) {
	content := `#EXTM3U
#EXTINF:-1 tvg-id="ch1" tvg-logo="http://example.com/logo.png" group-title="Live - Sport",Channel One
http://example.com/stream/1
#EXTINF:-1 group-title="Film - Azione",Some Movie
http://example.com/movie/123`

	parser := New()
	entries := parser.Parse(content)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].Title != "Channel One" {
		t.Errorf("expected title 'Channel One', got '%s'", entries[0].Title)
	}
	if entries[0].URL != "http://example.com/stream/1" {
		t.Errorf("unexpected URL '%s'", entries[0].URL)
	}
	if entries[0].Group != "Live - Sport" {
		t.Errorf("expected group 'Live - Sport', got '%s'", entries[0].Group)
	}
	if entries[0].ChannelID != "ch1" {
		t.Errorf("expected channel id 'ch1', got '%s'", entries[0].ChannelID)
	}
	if entries[0].Logo != "http://example.com/logo.png" {
		t.Errorf("unexpected logo '%s'", entries[0].Logo)
	}

	if entries[1].Group != "Film - Azione" {
		t.Errorf("expected group 'Film - Azione', got '%s'", entries[1].Group)
	}

	stats := parser.GetStats()
	if stats.ParsedEntries != 2 {
		t.Errorf("expected 2 parsed entries, got %d", stats.ParsedEntries)
	}
	if stats.MalformedEntries != 0 {
		t.Errorf("expected 0 malformed entries, got %d", stats.MalformedEntries)
	}
}

func TestParseAttributeKeysLowercased(t *testing.T) {
	content := `#EXTINF:-1 TVG-ID="upper" Group-Title="Mixed",Entry
http://example.com/x`

	entries := New().Parse(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Attributes["tvg-id"] != "upper" {
		t.Errorf("expected lowercased attribute key, got %v", entries[0].Attributes)
	}
	if entries[0].Group != "Mixed" {
		t.Errorf("expected group 'Mixed', got '%s'", entries[0].Group)
	}
}

func TestParseMalformedExtinfKeepsArmedEntry(t *testing.T) {
	content := `#EXTINF:-1,First Entry
#EXTINF:notanumber,Broken
http://example.com/first`

	parser := New()
	entries := parser.Parse(content)

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "First Entry" {
		t.Errorf("expected 'First Entry', got '%s'", entries[0].Title)
	}
	if entries[0].URL != "http://example.com/first" {
		t.Errorf("unexpected URL '%s'", entries[0].URL)
	}

	stats := parser.GetStats()
	if stats.ErrorsByType["invalid_extinf"] != 1 {
		t.Errorf("expected 1 invalid_extinf, got %d", stats.ErrorsByType["invalid_extinf"])
	}
	if stats.ErrorsByType["orphan_url"] != 0 {
		t.Errorf("expected no orphan urls, got %d", stats.ErrorsByType["orphan_url"])
	}
}

func TestParseMalformedExtinf(t *testing.T) {
	content := `#EXTM3U
#EXTINF:notanumber,Broken
http://example.com/broken
#EXTINF:-1,Good Entry
http://example.com/good`

	parser := New()
	entries := parser.Parse(content)

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "Good Entry" {
		t.Errorf("expected 'Good Entry', got '%s'", entries[0].Title)
	}

	stats := parser.GetStats()
	if stats.ErrorsByType["invalid_extinf"] != 1 {
		t.Errorf("expected 1 invalid_extinf error, got %d", stats.ErrorsByType["invalid_extinf"])
	}
	// The URL after the broken EXTINF has no pending entry
	if stats.ErrorsByType["orphan_url"] != 1 {
		t.Errorf("expected 1 orphan_url error, got %d", stats.ErrorsByType["orphan_url"])
	}
}

func TestParseExtinfWithoutURL(t *testing.T) {
	content := `#EXTM3U
#EXTINF:-1,First Without URL
#EXTINF:-1,Second With URL
http://example.com/second
#EXTINF:-1,Trailing Without URL`

	parser := New()
	entries := parser.Parse(content)

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "Second With URL" {
		t.Errorf("expected 'Second With URL', got '%s'", entries[0].Title)
	}

	stats := parser.GetStats()
	if stats.ErrorsByType["missing_url"] != 2 {
		t.Errorf("expected 2 missing_url errors, got %d", stats.ErrorsByType["missing_url"])
	}
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	content := `#EXTM3U
# some random comment

#EXTINF:-1,Entry
http://example.com/entry

#EXTVLCOPT:http-user-agent=foo`

	entries := New().Parse(content)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestParseEmptyInput(t *testing.T) {
	entries := New().Parse("")
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}
