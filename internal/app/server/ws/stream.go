package ws

import (
	"context"
	"encoding/json"
	"sync"
)

// Stream pumps values from a subscription channel to the socket as
// JSON frames. It owns the write side of the connection; the caller
// keeps running the read loop to notice disconnects.
type Stream[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	sock   *WebSocket
	src    <-chan T
	once   sync.Once
	done   chan struct{}
}

func NewStream[T any](parent context.Context, sock *WebSocket, src <-chan T) *Stream[T] {
	ctx, cancel := context.WithCancel(parent)
	s := &Stream[T]{
		ctx:    ctx,
		cancel: cancel,
		sock:   sock,
		src:    src,
		done:   make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

func (s *Stream[T]) writeLoop() {
	defer close(s.done)
	defer s.Close()
	for {
		select {
		case <-s.ctx.Done():
			return
		case v, ok := <-s.src:
			if !ok {
				return
			}
			data, err := json.Marshal(v)
			if err != nil {
				continue
			}
			if err := s.sock.WriteMessage(data); err != nil {
				return
			}
		}
	}
}

func (s *Stream[T]) Close() {
	s.once.Do(func() {
		s.cancel()
		s.sock.Close()
	})
}

// Done is closed when the write loop has exited.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.done
}
