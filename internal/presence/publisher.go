package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/genricoloni/nowcord/internal/domain"
	"github.com/hugolgst/rich-go/client"
	"go.uber.org/zap"
)

// DiscordPublisher shows the current track as Discord rich presence
type DiscordPublisher struct {
	logger    *zap.Logger
	rpc       RPC
	clientID  string
	connected bool
	now       func() time.Time
}

// NewDiscordPublisher creates a publisher for the configured application.
// The IPC connection is opened on the first publish.
func NewDiscordPublisher(logger *zap.Logger, cfg domain.Config, rpc RPC) *DiscordPublisher {
	return &DiscordPublisher{
		logger:   logger,
		rpc:      rpc,
		clientID: cfg.GetClientID(),
		now:      time.Now,
	}
}

// Activity builds the presence payload for a track. The session start is
// the publish time, so every track change resets the elapsed counter.
func Activity(track domain.Track, artworkURL string, start time.Time) client.Activity {
	hover := track.Album
	if hover == "" {
		hover = track.Artist
	}
	return client.Activity{
		State:      track.Label(),
		LargeImage: artworkURL,
		LargeText:  hover,
		Timestamps: &client.Timestamps{
			Start: &start,
		},
	}
}

// Publish pushes the track to Discord
func (p *DiscordPublisher) Publish(ctx context.Context, track domain.Track, artworkURL string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPublish, err)
	}

	if !p.connected {
		if err := p.rpc.Login(p.clientID); err != nil {
			return fmt.Errorf("%w: failed to connect to Discord: %w", domain.ErrPublish, err)
		}
		p.connected = true
		p.logger.Info("Connected to Discord RPC", zap.String("clientID", p.clientID))
	}

	activity := Activity(track, artworkURL, p.now())
	if err := p.rpc.SetActivity(activity); err != nil {
		// The socket is likely gone (Discord restarted); reconnect on the next publish.
		p.rpc.Logout()
		p.connected = false
		return fmt.Errorf("%w: %w", domain.ErrPublish, err)
	}

	p.logger.Info("Presence updated",
		zap.String("state", activity.State),
		zap.String("largeImage", activity.LargeImage))
	return nil
}

// Clear removes the presence by closing the IPC connection.
// It is a no-op when nothing was published.
func (p *DiscordPublisher) Clear(ctx context.Context) error {
	if !p.connected {
		return nil
	}
	p.rpc.Logout()
	p.connected = false
	p.logger.Info("Presence cleared")
	return nil
}

// Close clears any presence before shutdown
func (p *DiscordPublisher) Close() error {
	return p.Clear(context.Background())
}
