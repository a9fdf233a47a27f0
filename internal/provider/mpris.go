package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/genricoloni/nowcord/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisObjectPath = "/org/mpris/MediaPlayer2"
	mprisMetadata   = "org.mpris.MediaPlayer2.Player.Metadata"
	mprisStatus     = "org.mpris.MediaPlayer2.Player.PlaybackStatus"
)

// MprisProvider polls MPRIS players on the D-Bus session bus
type MprisProvider struct {
	logger *zap.Logger
	conn   DBusClient
	dial   func() (DBusClient, error)
}

// NewMprisProvider creates a new MPRIS track provider.
// The bus connection is opened on the first poll.
func NewMprisProvider(logger *zap.Logger, _ domain.Config) *MprisProvider {
	return &MprisProvider{
		logger: logger,
		dial: func() (DBusClient, error) {
			return NewStdDBusClient()
		},
	}
}

// CurrentTrack returns the track of the first playing MPRIS player
func (m *MprisProvider) CurrentTrack(ctx context.Context) (domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return domain.Track{}, fmt.Errorf("%w: %w", domain.ErrBridgeInvocation, err)
	}

	if m.conn == nil {
		conn, err := m.dial()
		if err != nil {
			return domain.Track{}, fmt.Errorf("%w: session bus connection failed: %w", domain.ErrBridgeInvocation, err)
		}
		m.conn = conn
		m.logger.Info("Connected to session bus")
	}

	names, err := m.conn.ListNames()
	if err != nil {
		m.reset()
		return domain.Track{}, fmt.Errorf("%w: failed to list bus names: %w", domain.ErrBridgeInvocation, err)
	}

	player := ""
	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		status, err := m.playbackStatus(name)
		if err != nil {
			m.logger.Debug("Skipping player", zap.String("player", name), zap.Error(err))
			continue
		}
		if status == "Playing" {
			player = name
			break
		}
	}

	if player == "" {
		return domain.StoppedTrack(noTrackMessage), nil
	}

	variant, err := m.conn.GetProperty(player, mprisObjectPath, mprisMetadata)
	if err != nil {
		return domain.Track{}, fmt.Errorf("%w: failed to get metadata from %s: %w", domain.ErrBridgeInvocation, player, err)
	}

	// SAFE CAST: Some players may return nil or unexpected types
	metadata, ok := variant.Value().(map[string]dbus.Variant)
	if !ok {
		return domain.Track{}, fmt.Errorf("%w: metadata of %s is %T, not a map", domain.ErrBridgeParse, player, variant.Value())
	}

	track := m.parseMetadata(metadata)
	track.State = domain.StatePlaying

	m.logger.Debug("MPRIS player polled",
		zap.String("player", player),
		zap.String("title", track.Title))
	return normalize(track), nil
}

// Close closes the bus connection if one is open
func (m *MprisProvider) Close() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}

func (m *MprisProvider) reset() {
	if err := m.Close(); err != nil {
		m.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
	}
}

func (m *MprisProvider) playbackStatus(player string) (string, error) {
	variant, err := m.conn.GetProperty(player, mprisObjectPath, mprisStatus)
	if err != nil {
		return "", err
	}
	status, ok := variant.Value().(string)
	if !ok {
		return "", fmt.Errorf("invalid playback status format")
	}
	return status, nil
}

// parseMetadata converts MPRIS metadata to a track
func (m *MprisProvider) parseMetadata(metadata map[string]dbus.Variant) domain.Track {
	var t domain.Track

	if titleVar, ok := metadata["xesam:title"]; ok {
		if title, ok := titleVar.Value().(string); ok {
			t.Title = title
		}
	}

	// Artist is specified as an array, some players send a plain string
	if artistVar, ok := metadata["xesam:artist"]; ok {
		switch artists := artistVar.Value().(type) {
		case []string:
			if len(artists) > 0 {
				t.Artist = artists[0]
			}
		case string:
			t.Artist = artists
		default:
			m.logger.Debug("Unexpected artist type in metadata",
				zap.String("type", fmt.Sprintf("%T", artistVar.Value())))
		}
	}

	if albumVar, ok := metadata["xesam:album"]; ok {
		if album, ok := albumVar.Value().(string); ok {
			t.Album = album
		}
	}

	// mpris:length is in microseconds
	if lengthVar, ok := metadata["mpris:length"]; ok {
		switch l := lengthVar.Value().(type) {
		case int64:
			t.Duration = float64(l) / 1e6
		case uint64:
			t.Duration = float64(l) / 1e6
		case int32:
			t.Duration = float64(l) / 1e6
		}
	}

	return t
}
