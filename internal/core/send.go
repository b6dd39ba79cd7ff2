package core

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Send is the handle returned by the respond family. The send completes
// asynchronously; the caller may wait on it or fire and continue.
type Send struct {
	done chan struct{}
	msg  *discordgo.Message
	err  error
}

func newSend() *Send {
	return &Send{done: make(chan struct{})}
}

// failedSend returns an already-completed handle carrying err.
func failedSend(err error) *Send {
	s := newSend()
	s.err = err
	close(s.done)
	return s
}

func (s *Send) finish(msg *discordgo.Message, err error) {
	s.msg = msg
	s.err = err
	close(s.done)
}

// Done is closed once the transport has acknowledged or rejected the send.
func (s *Send) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the send completes or ctx is cancelled.
func (s *Send) Wait(ctx context.Context) (*discordgo.Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return s.msg, s.err
	}
}

// Message returns the delivered message. Only valid after Done is closed.
func (s *Send) Message() *discordgo.Message {
	return s.msg
}

// Err returns the transport failure, if any. Only valid after Done is closed.
func (s *Send) Err() error {
	return s.err
}
