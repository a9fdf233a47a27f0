package presence

import (
	"github.com/hugolgst/rich-go/client"
)

// RPC defines the Discord IPC operations used by the publisher.
// The rich-go client keeps a single package-level socket; this
// abstraction allows us to mock it in tests.
//
//go:generate mockgen -destination=mocks/rpc_mock.go -package=mocks github.com/genricoloni/nowcord/internal/presence RPC
type RPC interface {
	// Login opens the IPC socket and performs the handshake for clientID
	Login(clientID string) error

	// Logout closes the IPC socket, which drops the activity
	Logout()

	// SetActivity replaces the current activity
	SetActivity(activity client.Activity) error
}

// RichRPC is the real implementation using rich-go
type RichRPC struct{}

// NewRichRPC returns the rich-go backed RPC
func NewRichRPC() *RichRPC {
	return &RichRPC{}
}

// Login opens the IPC socket
func (RichRPC) Login(clientID string) error {
	return client.Login(clientID)
}

// Logout closes the IPC socket
func (RichRPC) Logout() {
	client.Logout()
}

// SetActivity replaces the current activity
func (RichRPC) SetActivity(activity client.Activity) error {
	return client.SetActivity(activity)
}
