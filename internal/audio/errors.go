package audio

import "errors"

// Errors returned while opening the engine.
var (
	ErrNoOutputDevice = errors.New("no default output device found")
	ErrNoStreamConfig = errors.New("no audio configuration is available")
	ErrBuildStream    = errors.New("unable to build output stream")
	ErrPlayStream     = errors.New("unable to start output stream")
)

var (
	// ErrDisconnected is returned by the callback once every sender is closed
	// and the queue is drained, and by Send once the engine has stopped.
	ErrDisconnected = errors.New("command channel disconnected")
	ErrSenderClosed = errors.New("sender is closed")
)
