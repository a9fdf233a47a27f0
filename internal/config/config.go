package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envPrefix = "NOWCORD_"

	// DefaultClientID is the Discord application used for the presence
	DefaultClientID = "773825528921849856"

	defaultPollInterval  = 1 * time.Second
	defaultBridgeTimeout = 5 * time.Second
	defaultHTTPTimeout   = 10 * time.Second
	defaultMusicBrainz   = "https://musicbrainz.org"
	defaultCoverArt      = "https://coverartarchive.org"
	defaultUserAgent     = "nowcord/1.0 ( https://github.com/genricoloni/nowcord )"
	defaultMPDAddress    = "localhost:6600"
)

// Supported track providers
const (
	PlayerMusic = "music"
	PlayerMPRIS = "mpris"
	PlayerMPD   = "mpd"
)

// LookupFunc reads a single environment variable
type LookupFunc func(key string) (string, bool)

// AppConfig holds application configuration
type AppConfig struct {
	logger        *zap.Logger
	clientID      string
	player        string
	pollInterval  time.Duration
	bridgeTimeout time.Duration
	httpTimeout   time.Duration
	musicBrainz   string
	coverArt      string
	userAgent     string
	mpdAddress    string
	mpdPassword   string
}

// NewAppConfig creates a new application configuration instance from the process environment
func NewAppConfig(logger *zap.Logger) *AppConfig {
	return Load(logger, os.LookupEnv)
}

// Load builds the configuration from lookup, falling back to defaults
// for missing or invalid values.
func Load(logger *zap.Logger, lookup LookupFunc) *AppConfig {
	c := &AppConfig{
		logger:        logger,
		clientID:      stringVar(lookup, "CLIENT_ID", DefaultClientID),
		player:        stringVar(lookup, "PLAYER", DefaultPlayer()),
		pollInterval:  durationVar(logger, lookup, "POLL_INTERVAL", defaultPollInterval),
		bridgeTimeout: durationVar(logger, lookup, "BRIDGE_TIMEOUT", defaultBridgeTimeout),
		httpTimeout:   durationVar(logger, lookup, "HTTP_TIMEOUT", defaultHTTPTimeout),
		musicBrainz:   strings.TrimSuffix(stringVar(lookup, "MUSICBRAINZ_URL", defaultMusicBrainz), "/"),
		coverArt:      strings.TrimSuffix(stringVar(lookup, "COVERART_URL", defaultCoverArt), "/"),
		userAgent:     stringVar(lookup, "USER_AGENT", defaultUserAgent),
		mpdAddress:    stringVar(lookup, "MPD_ADDRESS", defaultMPDAddress),
		mpdPassword:   stringVar(lookup, "MPD_PASSWORD", ""),
	}

	c.player = strings.ToLower(c.player)
	switch c.player {
	case PlayerMusic, PlayerMPRIS, PlayerMPD:
	default:
		logger.Warn("Unknown player, using default",
			zap.String("player", c.player),
			zap.String("default", DefaultPlayer()))
		c.player = DefaultPlayer()
	}

	logger.Info("Configuration loaded",
		zap.String("player", c.player),
		zap.String("clientID", c.clientID),
		zap.Duration("pollInterval", c.pollInterval),
		zap.String("musicBrainz", c.musicBrainz),
		zap.String("coverArt", c.coverArt))

	return c
}

// DefaultPlayer is the Music app bridge on macOS and MPRIS everywhere else
func DefaultPlayer() string {
	if runtime.GOOS == "darwin" {
		return PlayerMusic
	}
	return PlayerMPRIS
}

// LogLevel returns the level requested by NOWCORD_LOG_LEVEL, info by default
func LogLevel(lookup LookupFunc) zapcore.Level {
	lvl := zapcore.InfoLevel
	if s := stringVar(lookup, "LOG_LEVEL", ""); s != "" {
		if err := lvl.UnmarshalText([]byte(s)); err != nil {
			return zapcore.InfoLevel
		}
	}
	return lvl
}

func stringVar(lookup LookupFunc, name, def string) string {
	if v, ok := lookup(envPrefix + name); ok && v != "" {
		return v
	}
	return def
}

func durationVar(logger *zap.Logger, lookup LookupFunc, name string, def time.Duration) time.Duration {
	s := stringVar(lookup, name, "")
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		logger.Warn("Invalid duration, using default",
			zap.String("variable", envPrefix+name),
			zap.String("value", s),
			zap.Duration("default", def))
		return def
	}
	return d
}

// GetClientID returns the chat client application identifier
func (c *AppConfig) GetClientID() string {
	return c.clientID
}

// GetPlayer returns the configured track provider
func (c *AppConfig) GetPlayer() string {
	return c.player
}

// GetPollInterval returns the sleep between two polls
func (c *AppConfig) GetPollInterval() time.Duration {
	return c.pollInterval
}

// GetBridgeTimeout bounds a single player bridge invocation
func (c *AppConfig) GetBridgeTimeout() time.Duration {
	return c.bridgeTimeout
}

// GetHTTPTimeout bounds a single artwork service request
func (c *AppConfig) GetHTTPTimeout() time.Duration {
	return c.httpTimeout
}

// GetMusicBrainzURL returns the release search base URL
func (c *AppConfig) GetMusicBrainzURL() string {
	return c.musicBrainz
}

// GetCoverArtURL returns the artwork archive base URL
func (c *AppConfig) GetCoverArtURL() string {
	return c.coverArt
}

// GetUserAgent returns the User-Agent sent to the artwork services
func (c *AppConfig) GetUserAgent() string {
	return c.userAgent
}

// GetMPDAddress returns host:port of the MPD server
func (c *AppConfig) GetMPDAddress() string {
	return c.mpdAddress
}

// GetMPDPassword returns the MPD password
func (c *AppConfig) GetMPDPassword() string {
	return c.mpdPassword
}

// FromMap is a LookupFunc backed by a map, handy for tests and embedding
func FromMap(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}
