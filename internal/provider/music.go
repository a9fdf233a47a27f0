package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/genricoloni/nowcord/internal/domain"
	"go.uber.org/zap"
)

// nowPlayingScript asks the Music app for its state and prints a JSON report
const nowPlayingScript = `
const Music = Application("Music");
const output = {};
if (Music.running() && Music.playerState() === "playing") {
  const track = Music.currentTrack;
  output.trackName = track.name();
  output.artistName = track.artist();
  output.albumName = track.album();
  output.duration = track.duration();
  output.playerState = Music.playerState();
} else {
  output.playerState = "stopped";
  output.message = "No track is currently playing.";
}
JSON.stringify(output)
`

// bridgeReport is the JSON object printed by the player bridge.
// Every field is optional; absent fields default to empty/zero.
type bridgeReport struct {
	TrackName   string  `json:"trackName"`
	ArtistName  string  `json:"artistName"`
	AlbumName   string  `json:"albumName"`
	Duration    float64 `json:"duration"`
	PlayerState string  `json:"playerState"`
	Message     *string `json:"message"`
}

// MusicBridge reads the current track from the macOS Music app through osascript
type MusicBridge struct {
	logger  *zap.Logger
	binary  string
	args    []string
	timeout time.Duration
}

// NewMusicBridge creates the osascript-backed track provider
func NewMusicBridge(logger *zap.Logger, cfg domain.Config) *MusicBridge {
	return &MusicBridge{
		logger:  logger,
		binary:  "osascript",
		args:    []string{"-l", "JavaScript", "-e", nowPlayingScript},
		timeout: cfg.GetBridgeTimeout(),
	}
}

// CurrentTrack runs the bridge once and parses its report
func (b *MusicBridge) CurrentTrack(ctx context.Context) (domain.Track, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.binary, b.args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		return domain.Track{}, fmt.Errorf("%w: %s: %w (stderr: %s)",
			domain.ErrBridgeInvocation, b.binary, err, strings.TrimSpace(stderr.String()))
	}

	track, err := parseBridgeReport(stdout.Bytes())
	if err != nil {
		return domain.Track{}, err
	}

	b.logger.Debug("Bridge report parsed",
		zap.String("title", track.Title),
		zap.String("state", track.State.String()))
	return track, nil
}

func parseBridgeReport(out []byte) (domain.Track, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return domain.Track{}, fmt.Errorf("%w: empty output", domain.ErrBridgeParse)
	}

	var rep bridgeReport
	if err := json.Unmarshal(out, &rep); err != nil {
		return domain.Track{}, fmt.Errorf("%w: %w", domain.ErrBridgeParse, err)
	}

	t := domain.Track{
		Title:    rep.TrackName,
		Artist:   rep.ArtistName,
		Album:    rep.AlbumName,
		Duration: rep.Duration,
		State:    domain.ParsePlayerState(rep.PlayerState),
	}
	if rep.Message != nil {
		t.Message = *rep.Message
	}
	return normalize(t), nil
}
