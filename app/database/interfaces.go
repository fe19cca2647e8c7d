package database

import "context"

// KV is a string-keyed blob store. Get reports found=false for absent keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

const (
	StoriesKey   = "newsdesk/stories"
	BookmarksKey = "newsdesk/bookmarks"
)

// ImportKey holds the content hashes already taken from an import source.
func ImportKey(source string) string {
	return "newsdesk/imports/" + source
}
