package provider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/nowcord/internal/domain"
	"go.uber.org/zap"
)

// mpdConn is the subset of *mpd.Client used by the provider
type mpdConn interface {
	Status() (mpd.Attrs, error)
	CurrentSong() (mpd.Attrs, error)
	Close() error
}

// MPDProvider reads the current song from an MPD server
type MPDProvider struct {
	logger  *zap.Logger
	address string
	passwd  string
	conn    mpdConn
	dial    func(address, password string) (mpdConn, error)
}

// NewMPDProvider creates a new MPD track provider.
// The connection is opened on the first poll and reopened after any failure.
func NewMPDProvider(logger *zap.Logger, cfg domain.Config) *MPDProvider {
	return &MPDProvider{
		logger:  logger,
		address: cfg.GetMPDAddress(),
		passwd:  cfg.GetMPDPassword(),
		dial: func(address, password string) (mpdConn, error) {
			if password == "" {
				return mpd.Dial("tcp", address)
			}
			return mpd.DialAuthenticated("tcp", address, password)
		},
	}
}

// CurrentTrack queries status and the current song
func (p *MPDProvider) CurrentTrack(ctx context.Context) (domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return domain.Track{}, fmt.Errorf("%w: %w", domain.ErrBridgeInvocation, err)
	}

	if p.conn == nil {
		conn, err := p.dial(p.address, p.passwd)
		if err != nil {
			return domain.Track{}, fmt.Errorf("%w: failed to connect to mpd at %s: %w", domain.ErrBridgeInvocation, p.address, err)
		}
		p.conn = conn
		p.logger.Info("MPD connected", zap.String("address", p.address))
	}

	status, err := p.conn.Status()
	if err != nil {
		p.reset()
		return domain.Track{}, fmt.Errorf("%w: mpd status: %w", domain.ErrBridgeInvocation, err)
	}

	if status["state"] != "play" {
		return domain.StoppedTrack(noTrackMessage), nil
	}

	song, err := p.conn.CurrentSong()
	if err != nil {
		p.reset()
		return domain.Track{}, fmt.Errorf("%w: mpd currentsong: %w", domain.ErrBridgeInvocation, err)
	}

	t := domain.Track{
		Title:  song["Title"],
		Artist: song["Artist"],
		Album:  song["Album"],
		State:  domain.StatePlaying,
	}

	// "duration" has sub-second precision, "Time" is the older integer field
	if d := song["duration"]; d != "" {
		t.Duration, err = strconv.ParseFloat(d, 64)
	} else if d := song["Time"]; d != "" {
		t.Duration, err = strconv.ParseFloat(d, 64)
	}
	if err != nil {
		return domain.Track{}, fmt.Errorf("%w: invalid song duration: %w", domain.ErrBridgeParse, err)
	}

	return normalize(t), nil
}

// Close closes the MPD connection if one is open
func (p *MPDProvider) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *MPDProvider) reset() {
	if err := p.Close(); err != nil {
		p.logger.Debug("Failed to close mpd connection", zap.Error(err))
	}
}
