package artwork

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/genricoloni/nowcord/internal/domain"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

const (
	_maxResponseSize = 2 * 1024 * 1024 // 2 MB
	thumbnailSize    = "250"
)

type searchResponse struct {
	Releases []struct {
		ID string `json:"id"`
	} `json:"releases"`
}

type coverResponse struct {
	Images []struct {
		Thumbnails map[string]string `json:"thumbnails"`
	} `json:"images"`
}

// Resolver finds album artwork through the MusicBrainz release search and
// the Cover Art Archive. Results, including misses, are cached for the
// lifetime of the process.
type Resolver struct {
	logger      *zap.Logger
	client      *http.Client
	cache       *ttlcache.Cache[string, string]
	musicBrainz string
	coverArt    string
	userAgent   string
}

// NewResolver creates a new artwork resolver
func NewResolver(logger *zap.Logger, cfg domain.Config) *Resolver {
	return &Resolver{
		logger: logger,
		client: &http.Client{
			Timeout: cfg.GetHTTPTimeout(),
		},
		cache: ttlcache.New(
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
		musicBrainz: cfg.GetMusicBrainzURL(),
		coverArt:    cfg.GetCoverArtURL(),
		userAgent:   cfg.GetUserAgent(),
	}
}

// CacheKey derives the cache key from the artist and album identity
func CacheKey(artist, album string) string {
	return artist + "|" + album
}

// Resolve returns the 250px thumbnail URL for the track's album, or "".
func (r *Resolver) Resolve(ctx context.Context, track domain.Track) string {
	key := CacheKey(track.Artist, track.Album)
	if item := r.cache.Get(key); item != nil {
		r.logger.Debug("Artwork cache hit", zap.String("key", key))
		return item.Value()
	}

	artURL, err := r.lookup(ctx, track.Artist, track.Album)
	if err != nil {
		r.logger.Warn("Artwork lookup failed, publishing without artwork",
			zap.String("artist", track.Artist),
			zap.String("album", track.Album),
			zap.Error(err))
		artURL = ""
	} else {
		r.logger.Info("Artwork resolved",
			zap.String("artist", track.Artist),
			zap.String("album", track.Album),
			zap.String("url", artURL))
	}

	r.cache.Set(key, artURL, ttlcache.NoTTL)
	return artURL
}

// Len returns the number of cached lookups
func (r *Resolver) Len() int {
	return r.cache.Len()
}

func (r *Resolver) lookup(ctx context.Context, artist, album string) (string, error) {
	releaseID, err := r.searchRelease(ctx, artist, album)
	if err != nil {
		return "", fmt.Errorf("%w: release search: %w", domain.ErrMetadataLookup, err)
	}

	thumb, err := r.thumbnail(ctx, releaseID)
	if err != nil {
		return "", fmt.Errorf("%w: cover art: %w", domain.ErrMetadataLookup, err)
	}
	return thumb, nil
}

// searchRelease takes the first release returned by the search; there is no ranking.
func (r *Resolver) searchRelease(ctx context.Context, artist, album string) (uuid.UUID, error) {
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("query", fmt.Sprintf("artist:%q AND release:%q", artist, album))
	endpoint := r.musicBrainz + "/ws/2/release/?" + q.Encode()

	var res searchResponse
	if err := r.getJSON(ctx, endpoint, &res); err != nil {
		return uuid.Nil, err
	}
	if len(res.Releases) == 0 {
		return uuid.Nil, fmt.Errorf("no releases found")
	}

	id, err := uuid.Parse(res.Releases[0].ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid release id %q: %w", res.Releases[0].ID, err)
	}
	return id, nil
}

func (r *Resolver) thumbnail(ctx context.Context, releaseID uuid.UUID) (string, error) {
	endpoint := fmt.Sprintf("%s/release/%s/", r.coverArt, releaseID)

	var res coverResponse
	if err := r.getJSON(ctx, endpoint, &res); err != nil {
		return "", err
	}
	if len(res.Images) == 0 {
		return "", fmt.Errorf("no images for release %s", releaseID)
	}

	thumb := res.Images[0].Thumbnails[thumbnailSize]
	if thumb == "" {
		return "", fmt.Errorf("release %s has no %spx thumbnail", releaseID, thumbnailSize)
	}
	return thumb, nil
}

func (r *Resolver) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, _maxResponseSize)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	r.logger.Debug("Metadata fetched", zap.String("url", endpoint))
	return nil
}
