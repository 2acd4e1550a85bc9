// Package reconcile folds a raw track set and its album-metadata table into
// three deduplicated collections: artists, albums, tracks. Identity comes
// from the catalog id when a record has one, and from a normalized fallback
// key when it does not. The merge policy throughout is first-seen wins: for a
// given key, only the earliest record's field values are kept, and later
// sightings are dropped whole. No field-level merging is attempted.
//
// Each pass reads only the track list and the metadata table, never another
// pass's output, so the three run independently and the whole fold is
// deterministic for a given input order.
package reconcile

import (
	"strconv"
	"strings"

	"github.com/likesync/likesync/internal/extract"
	"github.com/likesync/likesync/internal/yandex"
)

// Artist is a deduplicated artist entry.
type Artist struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name"`
}

// Album is a deduplicated album entry. ArtistName is the main artist of the
// track the album was first seen on, not necessarily the album's credited
// artist.
type Album struct {
	ID         *int64 `json:"id,omitempty"`
	Title      string `json:"title"`
	ArtistName string `json:"artistName"`
	Year       *int64 `json:"year,omitempty"`
	ArtistID   *int64 `json:"artistId,omitempty"`
	Genre      string `json:"genre,omitempty"`
}

// Track is a deduplicated track entry. Liked is always true: the entire
// input set originates from the liked-tracks library.
type Track struct {
	ID          *int64 `json:"id,omitempty"`
	Title       string `json:"title"`
	ArtistName  string `json:"artistName"`
	AlbumTitle  string `json:"albumTitle,omitempty"`
	DurationSec *int64 `json:"durationSec,omitempty"`
	AlbumID     *int64 `json:"albumId,omitempty"`
	ArtistID    *int64 `json:"artistId,omitempty"`
	Genre       string `json:"genre"`
	AlbumGenre  string `json:"albumGenre,omitempty"`
	Liked       bool   `json:"liked"`
}

// norm canonicalizes a string for key comparison only. Stored display values
// are trimmed but keep their original casing.
func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Artists builds the deduplicated artist list from every artist credit on
// every track. Credits with a parsable id dedup by id; the rest dedup by
// normalized name. The two identity spaces are intentionally never checked
// against each other: an id-bearing credit and an id-less credit with the
// same display name stay two entries. Output is id-keyed entries in
// first-seen order, then name-keyed entries in first-seen order.
func Artists(tracks []yandex.Track) []Artist {
	byID := []Artist{}
	byName := []Artist{}
	seenID := make(map[int64]struct{})
	seenName := make(map[string]struct{})

	for _, t := range tracks {
		for _, ref := range t.Artists {
			name := strings.TrimSpace(ref.Name)
			if name == "" {
				continue
			}
			if ref.ID.Valid {
				if _, ok := seenID[ref.ID.Int64]; ok {
					continue
				}
				seenID[ref.ID.Int64] = struct{}{}
				byID = append(byID, Artist{ID: ref.ID.Ptr(), Name: name})
			} else {
				key := norm(name)
				if _, ok := seenName[key]; ok {
					continue
				}
				seenName[key] = struct{}{}
				byName = append(byName, Artist{Name: name})
			}
		}
	}
	return append(byID, byName...)
}

// Albums builds the deduplicated album list from each track's primary album.
// A track contributes nothing when the album has neither title nor id. When
// the first-seen record's title is empty but the id is known, the title is
// backfilled from the metadata table; genre always comes from metadata,
// keyed by id.
func Albums(tracks []yandex.Track, meta map[int64]yandex.Album) []Album {
	out := []Album{}
	seen := make(map[string]struct{})

	for _, t := range tracks {
		artist := extract.MainArtist(t)
		album := extract.PrimaryAlbum(t)

		title := strings.TrimSpace(album.Title)
		if title == "" && !album.ID.Valid {
			continue
		}

		key := albumKey(album.ID, artist.Name, title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		entry := Album{
			Title:      title,
			ArtistName: strings.TrimSpace(artist.Name),
			Year:       album.Year.Ptr(),
			ArtistID:   artist.ID.Ptr(),
		}
		if album.ID.Valid {
			entry.ID = album.ID.Ptr()
			if m, ok := meta[album.ID.Int64]; ok {
				if entry.Title == "" {
					entry.Title = strings.TrimSpace(m.Title)
				}
				entry.Genre = extract.AlbumGenre(&m)
			}
		}
		out = append(out, entry)
	}
	return out
}

// Tracks builds the deduplicated track list. Duration comes from the
// millisecond field when present (integer seconds), else from the raw
// duration field read as seconds. Album title backfill and genre attachment
// follow the album pass.
func Tracks(tracks []yandex.Track, meta map[int64]yandex.Album) []Track {
	out := []Track{}
	seen := make(map[string]struct{})

	for _, t := range tracks {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		artist := extract.MainArtist(t)
		album := extract.PrimaryAlbum(t)

		var durationSec *int64
		if t.DurationMs.Valid {
			sec := t.DurationMs.Int64 / 1000
			durationSec = &sec
		} else if t.Duration.Valid {
			sec := t.Duration.Int64
			durationSec = &sec
		}

		key := trackKey(t.ID, artist.Name, title, durationSec)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		entry := Track{
			ID:          t.ID.Ptr(),
			Title:       title,
			ArtistName:  strings.TrimSpace(artist.Name),
			AlbumTitle:  strings.TrimSpace(album.Title),
			DurationSec: durationSec,
			ArtistID:    artist.ID.Ptr(),
			Genre:       extract.TrackGenre(t),
			Liked:       true,
		}
		if album.ID.Valid {
			entry.AlbumID = album.ID.Ptr()
			if m, ok := meta[album.ID.Int64]; ok {
				if entry.AlbumTitle == "" {
					entry.AlbumTitle = strings.TrimSpace(m.Title)
				}
				entry.AlbumGenre = extract.AlbumGenre(&m)
			}
		}
		out = append(out, entry)
	}
	return out
}

// DistinctAlbumIDs lists the primary-album ids seen across the track set, in
// first-seen order without duplicates. This is the enrichment fetch list.
func DistinctAlbumIDs(tracks []yandex.Track) []int64 {
	var ids []int64
	seen := make(map[int64]struct{})
	for _, t := range tracks {
		album := extract.PrimaryAlbum(t)
		if !album.ID.Valid {
			continue
		}
		if _, ok := seen[album.ID.Int64]; ok {
			continue
		}
		seen[album.ID.Int64] = struct{}{}
		ids = append(ids, album.ID.Int64)
	}
	return ids
}

func albumKey(id yandex.OptInt, artistName, title string) string {
	if id.Valid {
		return "id:" + strconv.FormatInt(id.Int64, 10)
	}
	return "pair:" + norm(artistName) + "|||" + norm(title)
}

func trackKey(id yandex.OptInt, artistName, title string, durationSec *int64) string {
	if id.Valid {
		return "id:" + strconv.FormatInt(id.Int64, 10)
	}
	var sec int64
	if durationSec != nil {
		sec = *durationSec
	}
	return "pair:" + norm(artistName) + "|||" + norm(title) + "|||" + strconv.FormatInt(sec, 10)
}
