package yandex

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The catalog serializes the same field differently depending on the
// endpoint, client version, and record age: ids arrive as numbers or quoted
// strings, genres as a single string, a list of strings, or a list of
// objects. The types below absorb that at the decode boundary so the rest of
// the codebase only ever sees strict shapes.

// OptInt is an optional integer field. It decodes JSON numbers, numeric
// strings, and null; anything unparsable decodes as absent rather than
// failing the record.
type OptInt struct {
	Int64 int64
	Valid bool
}

// Int returns an OptInt holding v.
func Int(v int64) OptInt {
	return OptInt{Int64: v, Valid: true}
}

func (o *OptInt) UnmarshalJSON(data []byte) error {
	*o = OptInt{}
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	o.Int64 = n
	o.Valid = true
	return nil
}

// Ptr returns the value as a pointer, nil when absent.
func (o OptInt) Ptr() *int64 {
	if !o.Valid {
		return nil
	}
	v := o.Int64
	return &v
}

// FlexString is a string field that may arrive as a JSON string or a number.
// Absent, null, and non-scalar values decode as the empty string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// GenreList is a genre field in any of its observed shapes: a single string,
// a list of strings, or a list of objects carrying a "title". It decodes to
// the ordered list of usable genre names; entries that yield no name are
// skipped.
type GenreList []string

func (g *GenreList) UnmarshalJSON(data []byte) error {
	*g = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if s != "" {
			*g = GenreList{s}
		}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		if item[0] == '"' {
			var s string
			if err := json.Unmarshal(item, &s); err == nil && s != "" {
				*g = append(*g, s)
			}
			continue
		}
		var obj struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.Title != "" {
			*g = append(*g, obj.Title)
		}
	}
	return nil
}

// Account identifies the token's owner, as far as the catalog reports it.
type Account struct {
	UID   OptInt
	Login string
}

// LikeStub is one entry of the liked-tracks library listing. Only enough to
// build a full-track lookup.
type LikeStub struct {
	ID      FlexString `json:"id"`
	AlbumID FlexString `json:"albumId"`
}

// ArtistRef is an artist credit embedded in a track record. The first credit
// on a track is its main artist.
type ArtistRef struct {
	ID   OptInt `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is an album credit embedded in a track record. The first credit is
// the track's primary album. Year is reported under two different keys
// depending on the record.
type AlbumRef struct {
	ID          OptInt `json:"id"`
	Title       string `json:"title"`
	Year        OptInt `json:"year"`
	ReleaseYear OptInt `json:"releaseYear"`
}

// Track is a full track record from the batch track lookup.
type Track struct {
	ID         OptInt      `json:"id"`
	Title      string      `json:"title"`
	DurationMs OptInt      `json:"durationMs"`
	Duration   OptInt      `json:"duration"`
	Artists    []ArtistRef `json:"artists"`
	Albums     []AlbumRef  `json:"albums"`
	Genre      GenreList   `json:"genre"`
	Genres     GenreList   `json:"genres"`
}

// Album is a full album record from the batch album lookup, used to enrich
// albums and tracks whose album id is known.
type Album struct {
	ID          OptInt    `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Genres      GenreList `json:"genres"`
	Year        OptInt    `json:"year"`
	ReleaseYear OptInt    `json:"releaseYear"`
}
