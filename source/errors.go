// SPDX-License-Identifier: EPL-2.0

package source

import "errors"

var (
	ErrAlreadyRunning      = errors.New("source is already running")
	ErrInvalidFormat       = errors.New("source needs a positive sample rate and channel count")
	ErrNoCommand           = errors.New("capture source needs a command")
	ErrNoAudio             = errors.New("source produced no audio")
	ErrBadHeader           = errors.New("pcm message header is truncated")
	ErrUnsupportedEncoding = errors.New("pcm message encoding is not supported")
	ErrUnknownKind         = errors.New("unknown source kind")
	ErrChunkTooLarge       = errors.New("chunk does not fit the queue")
)
