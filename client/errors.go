package client

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout         = errors.New("plog: timeout")
	ErrMessageTooLarge = errors.New("plog: message too large")
)

type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("plog: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("plog: invalid option %s: %s", e.Field, e.Reason)
}

type ProtocolError struct {
	Reply []byte
	Err   error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("plog: invalid reply %q: %v", e.Reply, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
