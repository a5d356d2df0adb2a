package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one decoded session command.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers one command per connection until the context is cancelled or
// the listener closes. Malformed and unknown requests are answered with an
// error response at the framing layer; they never reach the handler.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept session connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()
			answer(ctx, c, handler)
		}(conn)
	}
}

// answer decodes a single request from conn and writes exactly one response.
func answer(ctx context.Context, conn net.Conn, handler Handler) {
	enc := json.NewEncoder(conn)

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		_ = enc.Encode(Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
		return
	}
	if !req.Command.Known() {
		_ = enc.Encode(Response{OK: false, Error: fmt.Sprintf("unknown command: %s", req.Command)})
		return
	}

	_ = enc.Encode(handler.Handle(ctx, req))
}
