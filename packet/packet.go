// Package packet implements the plog datagram wire format.
//
// Every datagram starts with a protocol version byte and a packet type byte.
// Commands carry an ASCII verb after those two bytes, multipart messages carry
// the 24 bytes header described in multipart.go, an optional NUL terminated
// tag block and one chunk of the original message.
package packet

import "errors"

const (
	ProtocolVersion = 0

	TypeCommand          = 0
	TypeMultipartMessage = 1

	MultipartHeaderSize = 24

	// largest UDP payload over IPv4
	MaxDatagramSize = 65507
	MaxChunkSize    = MaxDatagramSize - MultipartHeaderSize
	MaxChunkCount   = 1<<16 - 1
	MaxTagBlockSize = 1<<16 - 1
	MaxMessageSize  = 1<<32 - 1
)

var (
	ErrInvalidHeader    = errors.New("packet: invalid header")
	ErrInvalidVersion   = errors.New("packet: unsupported protocol version")
	ErrInvalidType      = errors.New("packet: unexpected packet type")
	ErrInvalidTag       = errors.New("packet: tag contains NUL byte")
	ErrInvalidTagBlock  = errors.New("packet: invalid tag block")
	ErrTagBlockTooLarge = errors.New("packet: tag block too large")
)

// Type returns the packet type of a datagram after checking its version.
func Type(b []byte) (byte, error) {
	if len(b) < 2 {
		return 0, ErrInvalidHeader
	}
	if b[0] != ProtocolVersion {
		return 0, ErrInvalidVersion
	}
	return b[1], nil
}
