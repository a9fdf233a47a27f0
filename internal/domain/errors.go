package domain

import "errors"

var (
	// ErrBridgeInvocation means the player bridge could not be run or exited with an error
	ErrBridgeInvocation = errors.New("player bridge invocation failed")
	// ErrBridgeParse means the bridge answered with something that is not a valid track report
	ErrBridgeParse = errors.New("player bridge returned malformed output")
	// ErrMetadataLookup covers network, HTTP and decoding failures of the artwork services
	ErrMetadataLookup = errors.New("metadata lookup failed")
	// ErrPublish means the chat client rejected or never received the presence update
	ErrPublish = errors.New("presence publish failed")
)
