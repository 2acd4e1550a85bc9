// Package likes orchestrates the export pipeline: list the user's liked
// tracks, expand them to full records, enrich with album metadata, and fold
// everything into the three output collections.
package likes

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/likesync/likesync/internal/reconcile"
	"github.com/likesync/likesync/internal/yandex"
)

// Fetcher is the batched catalog access the pipeline runs on.
type Fetcher interface {
	LikedTrackRefs(ctx context.Context, token string) ([]string, error)
	FullTracks(ctx context.Context, token string, refs []string) ([]yandex.Track, error)
	AlbumMetadata(ctx context.Context, token string, ids []int64) (map[int64]yandex.Album, error)
}

// Identity is the minimal catalog access token verification needs.
type Identity interface {
	AccountStatus(ctx context.Context, token string) (yandex.Account, error)
	LikedTracks(ctx context.Context, token string, uid int64) ([]yandex.LikeStub, error)
}

// Export is the assembled result of one export run.
type Export struct {
	Artists []reconcile.Artist `json:"artists"`
	Albums  []reconcile.Album  `json:"albums"`
	Tracks  []reconcile.Track  `json:"tracks"`
}

// Verification is the outcome of a successful token check. UID and Login are
// best effort; either may be absent.
type Verification struct {
	UID   *int64
	Login string
}

// Service runs exports and token checks. It holds no per-user state: every
// call carries its own token and performs a full pass.
type Service struct {
	fetcher  Fetcher
	identity Identity
	logger   *log.Logger
}

// New creates the service.
func New(fetcher Fetcher, identity Identity, logger *log.Logger) *Service {
	return &Service{fetcher: fetcher, identity: identity, logger: logger}
}

// Export performs a full fetch-and-reconcile pass over the user's current
// like set. There are no partial results: any fetch failure fails the run.
func (s *Service) Export(ctx context.Context, token string) (*Export, error) {
	logger := s.logger.With("job", uuid.NewString())

	refs, err := s.fetcher.LikedTrackRefs(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("listing liked tracks: %w", err)
	}
	logger.Debug("listed likes", "refs", len(refs))

	tracks, err := s.fetcher.FullTracks(ctx, token, refs)
	if err != nil {
		return nil, fmt.Errorf("expanding tracks: %w", err)
	}
	logger.Debug("expanded tracks", "tracks", len(tracks))

	albumIDs := reconcile.DistinctAlbumIDs(tracks)
	meta, err := s.fetcher.AlbumMetadata(ctx, token, albumIDs)
	if err != nil {
		return nil, fmt.Errorf("enriching albums: %w", err)
	}
	logger.Debug("enriched albums", "requested", len(albumIDs), "resolved", len(meta))

	export := &Export{
		Artists: reconcile.Artists(tracks),
		Albums:  reconcile.Albums(tracks, meta),
		Tracks:  reconcile.Tracks(tracks, meta),
	}
	logger.Info("export assembled",
		"artists", len(export.Artists),
		"albums", len(export.Albums),
		"tracks", len(export.Tracks))
	return export, nil
}

// Verify checks the token against the catalog: account status is the
// authentication gate, and when a uid is known the likes listing confirms
// library read access. UID and Login come from the account payload,
// independently and best effort.
func (s *Service) Verify(ctx context.Context, token string) (*Verification, error) {
	acct, err := s.identity.AccountStatus(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("checking account: %w", err)
	}

	v := &Verification{Login: acct.Login, UID: acct.UID.Ptr()}
	if acct.UID.Valid {
		if _, err := s.identity.LikedTracks(ctx, token, acct.UID.Int64); err != nil {
			return nil, fmt.Errorf("checking library access: %w", err)
		}
	}
	return v, nil
}
