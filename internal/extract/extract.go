// Package extract pulls canonical field values out of raw catalog records.
// Every function here is pure and total: missing or malformed data degrades
// to an absent value, never an error.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/likesync/likesync/internal/yandex"
)

// ArtistSignal is the main-artist projection of a track: the first artist
// credit, or nothing when the track has none.
type ArtistSignal struct {
	Name string // empty when absent
	ID   yandex.OptInt
}

// MainArtist reads the track's main artist.
func MainArtist(t yandex.Track) ArtistSignal {
	if len(t.Artists) == 0 {
		return ArtistSignal{}
	}
	ref := t.Artists[0]
	return ArtistSignal{Name: ref.Name, ID: ref.ID}
}

// AlbumSignal is the primary-album projection of a track.
type AlbumSignal struct {
	ID    yandex.OptInt
	Title string // empty when absent
	Year  yandex.OptInt
}

// PrimaryAlbum reads the track's primary album. Year falls back from the
// year field to releaseYear when the first is absent.
func PrimaryAlbum(t yandex.Track) AlbumSignal {
	if len(t.Albums) == 0 {
		return AlbumSignal{}
	}
	ref := t.Albums[0]
	year := ref.Year
	if !year.Valid {
		year = ref.ReleaseYear
	}
	return AlbumSignal{ID: ref.ID, Title: ref.Title, Year: year}
}

// AlbumGenre picks a single genre for an album record: the singular genre
// field when non-empty, else the first entry of the genre list. Returns the
// empty string when album is nil or neither field yields a usable value.
func AlbumGenre(album *yandex.Album) string {
	if album == nil {
		return ""
	}
	if g := strings.TrimSpace(album.Genre); g != "" {
		return g
	}
	if len(album.Genres) > 0 {
		return album.Genres[0]
	}
	return ""
}

// TrackGenre renders a track's genre names as a compact JSON array string,
// e.g. `["rock","indie"]`, with the literal "[]" when the track has none.
// The textual form stands in for structured genre support and is relied on
// downstream; keep the encoding stable.
func TrackGenre(t yandex.Track) string {
	names := t.Genres
	if len(names) == 0 {
		names = t.Genre
	}
	if len(names) == 0 {
		return "[]"
	}
	b, err := json.Marshal([]string(names))
	if err != nil {
		return "[]"
	}
	return string(b)
}
