package catalog

import (
	"hash/crc32"
	"strconv"
	"strings"
	"testing"

	"streamgate/internal/models"
)

func TestBuildLiveStreams(t *testing.T) {
	b := newTestBuilder(t)

	entries := []models.PlaylistEntry{
		{Title: "Channel One", URL: "http://up/live/channel-one", Group: "Live - Sport", ChannelID: "ch1", Logo: "http://img/ch1.png"},
		{Title: "Channel Two", URL: "http://up/live/xy"},
	}

	streams, catMap := b.BuildLiveStreams("http://gw", entries)

	if len(streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(streams))
	}

	first := streams[0]
	if first.StreamID != "lv_channel-one" {
		t.Errorf("expected lv_channel-one, got %s", first.StreamID)
	}
	if first.StreamType != "live" {
		t.Errorf("expected stream_type live, got %s", first.StreamType)
	}
	if first.EPGChannelID != "ch1" {
		t.Errorf("expected epg channel ch1, got %s", first.EPGChannelID)
	}
	if first.CategoryName != "Sport" {
		t.Errorf("expected category Sport, got %s", first.CategoryName)
	}
	if first.DirectSource != "http://gw/tv?u=http%3A%2F%2Fup%2Flive%2Fchannel-one" {
		t.Errorf("unexpected direct_source %s", first.DirectSource)
	}

	// Segment too short: hex checksum of the whole URL instead
	wantToken := strconv.FormatUint(uint64(crc32.ChecksumIEEE([]byte("http://up/live/xy"))), 16)
	if streams[1].StreamID != "lv_"+wantToken {
		t.Errorf("expected lv_%s, got %s", wantToken, streams[1].StreamID)
	}
	// Empty group falls back to the default live category
	if streams[1].CategoryName != "Live" {
		t.Errorf("expected default category Live, got %s", streams[1].CategoryName)
	}

	if catMap["Sport"] == "" {
		t.Error("expected Sport in category map")
	}
}

func TestLiveStreamIDTruncation(t *testing.T) {
	id := liveStreamID("http://up/live/averylongsegmentnamethatexceeds")
	if id != "lv_averylongsegment" {
		t.Errorf("expected 16-char token, got %s", id)
	}
	if len(strings.TrimPrefix(id, "lv_")) != 16 {
		t.Errorf("token not truncated to 16: %s", id)
	}
}

func TestLiveStreamIDStability(t *testing.T) {
	a := liveStreamID("http://up/live/channel-one")
	b := liveStreamID("http://up/live/channel-one")
	if a != b {
		t.Errorf("ids must be stable: %s != %s", a, b)
	}
}
