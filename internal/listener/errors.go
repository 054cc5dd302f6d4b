package listener

import (
	"errors"
	"fmt"
	"net/netip"
)

var (
	ErrAlreadyStarted  = errors.New("listener already started")
	ErrNotStarted      = errors.New("listener not started")
	ErrAlreadyAccepted = errors.New("listener already accepted its peer")
	ErrClosed          = errors.New("listener closed")
)

// BindError is returned by Start when the address is in use or inaccessible. It is fatal.
type BindError struct {
	Addr netip.AddrPort
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("unable to listen on %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// AcceptError is returned by AcceptOne when the rendezvous fails at the transport level. It is fatal.
type AcceptError struct {
	Err error
}

func (e *AcceptError) Error() string {
	return fmt.Sprintf("unable to accept peer: %v", e.Err)
}

func (e *AcceptError) Unwrap() error {
	return e.Err
}
