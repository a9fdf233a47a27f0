package domain

import (
	"context"
	"time"
)

// TrackProvider queries the local media player for the current track.
//
//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/nowcord/internal/domain TrackProvider,ArtworkResolver,Publisher
type TrackProvider interface {
	// CurrentTrack returns the normalized current track.
	// A non-playing player yields a stopped Track and a nil error.
	// Errors wrap ErrBridgeInvocation or ErrBridgeParse.
	CurrentTrack(ctx context.Context) (Track, error)
}

// ArtworkResolver maps a track to an album artwork thumbnail URL
type ArtworkResolver interface {
	// Resolve returns the thumbnail URL, or "" when no artwork could be found.
	// It never fails: lookup errors degrade to "".
	Resolve(ctx context.Context, track Track) string
}

// Publisher pushes presence updates to the chat client
type Publisher interface {
	// Publish shows the track with the given artwork URL
	Publish(ctx context.Context, track Track, artworkURL string) error

	// Clear removes any presence currently shown
	Clear(ctx context.Context) error

	// Close releases the connection to the chat client
	Close() error
}

// Config defines the interface for application configuration
type Config interface {
	// GetClientID returns the chat client application identifier
	GetClientID() string

	// GetPlayer returns the track provider to use ("music", "mpris" or "mpd")
	GetPlayer() string

	// GetPollInterval returns the sleep between two polls
	GetPollInterval() time.Duration

	// GetBridgeTimeout bounds a single player bridge invocation
	GetBridgeTimeout() time.Duration

	// GetHTTPTimeout bounds a single artwork service request
	GetHTTPTimeout() time.Duration

	// GetMusicBrainzURL returns the release search base URL
	GetMusicBrainzURL() string

	// GetCoverArtURL returns the artwork archive base URL
	GetCoverArtURL() string

	// GetUserAgent returns the User-Agent sent to the artwork services
	GetUserAgent() string

	// GetMPDAddress returns host:port of the MPD server
	GetMPDAddress() string

	// GetMPDPassword returns the MPD password, empty for none
	GetMPDPassword() string
}
