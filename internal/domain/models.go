package domain

import "fmt"

// PlayerState represents the current state of the media player
type PlayerState int

const (
	// StateUnknown is the zero value, used before the first poll
	StateUnknown PlayerState = iota
	// StatePlaying indicates the player is currently playing a track
	StatePlaying
	// StateStopped covers stopped, paused and "player not running"
	StateStopped
)

func (s PlayerState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ParsePlayerState maps a bridge state string to a PlayerState.
// Anything other than "playing" is reported as stopped.
func ParsePlayerState(s string) PlayerState {
	if s == "playing" {
		return StatePlaying
	}
	return StateStopped
}

// Identity is the part of a track used for change detection
type Identity struct {
	Title  string
	Artist string
	Album  string
}

// IsZero reports whether every identity field is empty
func (id Identity) IsZero() bool {
	return id.Title == "" && id.Artist == "" && id.Album == ""
}

// Track is the normalized record returned by a TrackProvider on every poll
type Track struct {
	// Title of the track
	Title string
	// Artist name
	Artist string
	// Album name
	Album string
	// Duration in seconds, zero when unknown
	Duration float64
	// State is the playback state reported by the player
	State PlayerState
	// Message is an optional diagnostic from the bridge
	Message string
}

// StoppedTrack returns the normalized "no track" record
func StoppedTrack(message string) Track {
	return Track{State: StateStopped, Message: message}
}

// Identity returns the (title, artist, album) triple
func (t Track) Identity() Identity {
	return Identity{Title: t.Title, Artist: t.Artist, Album: t.Album}
}

// SameAs compares identities only; duration, state and message are ignored.
func (t Track) SameAs(other Track) bool {
	return t.Identity() == other.Identity()
}

// IsPlaying is true for a playing track that carries an identity
func (t Track) IsPlaying() bool {
	return t.State == StatePlaying && !t.Identity().IsZero()
}

// Label is the primary presence text, "{title} - {artist}"
func (t Track) Label() string {
	return fmt.Sprintf("%s - %s", t.Title, t.Artist)
}

func (t Track) String() string {
	return fmt.Sprintf("%q by %s (%s)", t.Title, t.Artist, t.State)
}
