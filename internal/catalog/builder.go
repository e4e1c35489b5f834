package catalog

import (
	"hash/crc32"
	"net/url"

	"streamgate/internal/category"
	"streamgate/internal/classifier"
)

// Builder turns classified playlist entries into Xtream-shaped catalog
// records. Every record carries a direct source URL pointing back at the
// gateway's own resolver endpoints, never the upstream URL.
type Builder struct {
	classifier *classifier.Classifier
	categories *category.Allocator
}

// NewBuilder creates a catalog builder
func NewBuilder(cls *classifier.Classifier, categories *category.Allocator) *Builder {
	return &Builder{
		classifier: cls,
		categories: categories,
	}
}

// checksum returns the zlib-compatible CRC32 of s, used as the
// deterministic fallback id when no provider id is extractable.
func checksum(s string) uint32 {
	return crc32.ChecksumIEEE([]byte(s))
}

// encode percent-encodes a URL for embedding in a query parameter
func encode(u string) string {
	return url.QueryEscape(u)
}

// DirectVideoURL builds the gateway resolver link for VOD and episodes
func DirectVideoURL(base, originalURL string) string {
	return base + "/video?u=" + encode(originalURL)
}

// DirectLiveURL builds the gateway resolver link for live channels
func DirectLiveURL(base, originalURL string) string {
	return base + "/tv?u=" + encode(originalURL)
}
