// Package fetch batches lookups against the music catalog. It owns the
// chunking policy: the catalog enforces batch-size limits on its lookup
// calls, and the like set is unbounded, so every lookup goes through a fixed
// chunk loop. Chunks are issued sequentially and results concatenated in
// chunk order, which keeps the downstream dedup keys deterministic.
package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/likesync/likesync/internal/yandex"
)

// Batch caps enforced by the catalog API.
const (
	trackChunkSize = 100
	albumChunkSize = 20
)

// Catalog is the subset of the catalog client the fetcher depends on.
type Catalog interface {
	AccountStatus(ctx context.Context, token string) (yandex.Account, error)
	LikedTracks(ctx context.Context, token string, uid int64) ([]yandex.LikeStub, error)
	Tracks(ctx context.Context, token string, refs []string) ([]yandex.Track, error)
	Albums(ctx context.Context, token string, ids []int64) ([]yandex.Album, error)
}

// Fetcher issues bounded-size batched lookups against the catalog.
type Fetcher struct {
	catalog Catalog
}

// New creates a Fetcher over the given catalog.
func New(catalog Catalog) *Fetcher {
	return &Fetcher{catalog: catalog}
}

// LikedTrackRefs lists the user's liked tracks and converts them to batch
// lookup refs, in library order. Stubs without a track id are dropped.
func (f *Fetcher) LikedTrackRefs(ctx context.Context, token string) ([]string, error) {
	acct, err := f.catalog.AccountStatus(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolving account: %w", err)
	}
	if !acct.UID.Valid {
		return nil, fmt.Errorf("resolving account: no uid: %w", yandex.ErrAuth)
	}

	stubs, err := f.catalog.LikedTracks(ctx, token, acct.UID.Int64)
	if err != nil {
		return nil, fmt.Errorf("listing likes: %w", err)
	}

	refs := make([]string, 0, len(stubs))
	for _, stub := range stubs {
		id := strings.TrimSpace(string(stub.ID))
		if id == "" {
			continue
		}
		if albumID := strings.TrimSpace(string(stub.AlbumID)); albumID != "" {
			refs = append(refs, id+":"+albumID)
		} else {
			refs = append(refs, id)
		}
	}
	return refs, nil
}

// FullTracks expands lookup refs into full track records, in ref order. A
// chunk that resolves to nothing contributes nothing; a chunk that fails
// aborts the whole fetch.
func (f *Fetcher) FullTracks(ctx context.Context, token string, refs []string) ([]yandex.Track, error) {
	var tracks []yandex.Track
	for start := 0; start < len(refs); start += trackChunkSize {
		end := min(start+trackChunkSize, len(refs))
		part, err := f.catalog.Tracks(ctx, token, refs[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetching tracks %d..%d: %w", start, end, err)
		}
		tracks = append(tracks, part...)
	}
	return tracks, nil
}

// AlbumMetadata fetches album records by id and merges them into an id-keyed
// table. Zero ids are skipped. Same failure policy as FullTracks.
func (f *Fetcher) AlbumMetadata(ctx context.Context, token string, ids []int64) (map[int64]yandex.Album, error) {
	filtered := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			filtered = append(filtered, id)
		}
	}

	meta := make(map[int64]yandex.Album, len(filtered))
	for start := 0; start < len(filtered); start += albumChunkSize {
		end := min(start+albumChunkSize, len(filtered))
		part, err := f.catalog.Albums(ctx, token, filtered[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetching albums %d..%d: %w", start, end, err)
		}
		for _, album := range part {
			if album.ID.Valid {
				meta[album.ID.Int64] = album
			}
		}
	}
	return meta, nil
}
