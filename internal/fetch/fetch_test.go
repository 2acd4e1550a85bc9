package fetch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/likesync/likesync/internal/yandex"
)

// fakeCatalog records every lookup and serves canned responses.
type fakeCatalog struct {
	account     yandex.Account
	accountErr  error
	stubs       []yandex.LikeStub
	stubsErr    error
	trackCalls  [][]string
	tracksErr   error
	failAtChunk int // 1-based chunk index to fail on, 0 = never
	albumCalls  [][]int64
	albumsErr   error
}

func (f *fakeCatalog) AccountStatus(ctx context.Context, token string) (yandex.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeCatalog) LikedTracks(ctx context.Context, token string, uid int64) ([]yandex.LikeStub, error) {
	return f.stubs, f.stubsErr
}

func (f *fakeCatalog) Tracks(ctx context.Context, token string, refs []string) ([]yandex.Track, error) {
	f.trackCalls = append(f.trackCalls, append([]string(nil), refs...))
	if f.failAtChunk != 0 && len(f.trackCalls) == f.failAtChunk {
		return nil, f.tracksErr
	}
	tracks := make([]yandex.Track, len(refs))
	for i, ref := range refs {
		tracks[i] = yandex.Track{Title: ref}
	}
	return tracks, nil
}

func (f *fakeCatalog) Albums(ctx context.Context, token string, ids []int64) ([]yandex.Album, error) {
	f.albumCalls = append(f.albumCalls, append([]int64(nil), ids...))
	if f.albumsErr != nil {
		return nil, f.albumsErr
	}
	albums := make([]yandex.Album, len(ids))
	for i, id := range ids {
		albums[i] = yandex.Album{ID: yandex.Int(id), Title: fmt.Sprintf("album-%d", id)}
	}
	return albums, nil
}

func TestLikedTrackRefs(t *testing.T) {
	catalog := &fakeCatalog{
		account: yandex.Account{UID: yandex.Int(77)},
		stubs: []yandex.LikeStub{
			{ID: "1", AlbumID: "10"},
			{ID: "2"},
			{AlbumID: "99"}, // no track id, dropped
			{ID: " ", AlbumID: "3"},
		},
	}

	refs, err := New(catalog).LikedTrackRefs(context.Background(), "tok")
	if err != nil {
		t.Fatalf("LikedTrackRefs: %v", err)
	}
	want := []string{"1:10", "2"}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("refs = %v, want %v", refs, want)
	}
}

func TestLikedTrackRefsNoUID(t *testing.T) {
	catalog := &fakeCatalog{account: yandex.Account{}}

	_, err := New(catalog).LikedTrackRefs(context.Background(), "tok")
	if !errors.Is(err, yandex.ErrAuth) {
		t.Errorf("error = %v, want ErrAuth", err)
	}
}

func TestFullTracksChunking(t *testing.T) {
	refs := make([]string, 250)
	for i := range refs {
		refs[i] = fmt.Sprintf("%d", i)
	}
	catalog := &fakeCatalog{}

	tracks, err := New(catalog).FullTracks(context.Background(), "tok", refs)
	if err != nil {
		t.Fatalf("FullTracks: %v", err)
	}

	wantSizes := []int{100, 100, 50}
	if len(catalog.trackCalls) != len(wantSizes) {
		t.Fatalf("got %d chunks, want %d", len(catalog.trackCalls), len(wantSizes))
	}
	for i, call := range catalog.trackCalls {
		if len(call) != wantSizes[i] {
			t.Errorf("chunk %d size = %d, want %d", i, len(call), wantSizes[i])
		}
	}

	// Concatenation preserves ref order across chunks.
	if len(tracks) != 250 {
		t.Fatalf("got %d tracks, want 250", len(tracks))
	}
	for i, track := range tracks {
		if track.Title != refs[i] {
			t.Fatalf("tracks[%d] = %q, want %q", i, track.Title, refs[i])
		}
	}
}

func TestFullTracksChunkFailureAborts(t *testing.T) {
	refs := make([]string, 250)
	for i := range refs {
		refs[i] = fmt.Sprintf("%d", i)
	}
	catalog := &fakeCatalog{
		failAtChunk: 2,
		tracksErr:   fmt.Errorf("boom: %w", yandex.ErrUpstream),
	}

	tracks, err := New(catalog).FullTracks(context.Background(), "tok", refs)
	if !errors.Is(err, yandex.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
	if tracks != nil {
		t.Errorf("tracks = %v, want nil on chunk failure", tracks)
	}
}

func TestFullTracksEmpty(t *testing.T) {
	catalog := &fakeCatalog{}
	tracks, err := New(catalog).FullTracks(context.Background(), "tok", nil)
	if err != nil {
		t.Fatalf("FullTracks: %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("tracks = %v, want none", tracks)
	}
	if len(catalog.trackCalls) != 0 {
		t.Errorf("made %d calls, want none", len(catalog.trackCalls))
	}
}

func TestAlbumMetadataChunking(t *testing.T) {
	ids := make([]int64, 45)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	catalog := &fakeCatalog{}

	meta, err := New(catalog).AlbumMetadata(context.Background(), "tok", ids)
	if err != nil {
		t.Fatalf("AlbumMetadata: %v", err)
	}

	wantSizes := []int{20, 20, 5}
	if len(catalog.albumCalls) != len(wantSizes) {
		t.Fatalf("got %d chunks, want %d", len(catalog.albumCalls), len(wantSizes))
	}
	for i, call := range catalog.albumCalls {
		if len(call) != wantSizes[i] {
			t.Errorf("chunk %d size = %d, want %d", i, len(call), wantSizes[i])
		}
	}
	if len(meta) != 45 {
		t.Errorf("got %d entries, want 45", len(meta))
	}
	if meta[7].Title != "album-7" {
		t.Errorf("meta[7] = %+v, want album-7", meta[7])
	}
}

func TestAlbumMetadataSkipsZeroIDs(t *testing.T) {
	catalog := &fakeCatalog{}

	meta, err := New(catalog).AlbumMetadata(context.Background(), "tok", []int64{0, 10, 0})
	if err != nil {
		t.Fatalf("AlbumMetadata: %v", err)
	}
	if len(catalog.albumCalls) != 1 || !reflect.DeepEqual(catalog.albumCalls[0], []int64{10}) {
		t.Errorf("calls = %v, want one call with [10]", catalog.albumCalls)
	}
	if len(meta) != 1 {
		t.Errorf("got %d entries, want 1", len(meta))
	}
}

func TestAlbumMetadataFailureAborts(t *testing.T) {
	catalog := &fakeCatalog{albumsErr: fmt.Errorf("boom: %w", yandex.ErrUpstream)}

	meta, err := New(catalog).AlbumMetadata(context.Background(), "tok", []int64{10})
	if !errors.Is(err, yandex.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
	if meta != nil {
		t.Errorf("meta = %v, want nil on failure", meta)
	}
}
