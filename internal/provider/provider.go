package provider

import (
	"fmt"

	"github.com/genricoloni/nowcord/internal/config"
	"github.com/genricoloni/nowcord/internal/domain"
	"go.uber.org/zap"
)

// New returns the TrackProvider selected by configuration
func New(logger *zap.Logger, cfg domain.Config) (domain.TrackProvider, error) {
	player := cfg.GetPlayer()
	logger.Info("Track provider selected", zap.String("player", player))

	switch player {
	case config.PlayerMusic:
		return NewMusicBridge(logger, cfg), nil
	case config.PlayerMPRIS:
		return NewMprisProvider(logger, cfg), nil
	case config.PlayerMPD:
		return NewMPDProvider(logger, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported player %q", player)
	}
}

// normalize enforces the provider contract: anything that is not a playing
// track with an identity becomes a stopped track with empty identity.
func normalize(t domain.Track) domain.Track {
	if t.IsPlaying() {
		return t
	}
	msg := t.Message
	if msg == "" {
		msg = noTrackMessage
	}
	return domain.StoppedTrack(msg)
}

const noTrackMessage = "No track is currently playing."
