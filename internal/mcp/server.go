package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/hbastos/intervals-icu-mcp/internal/logger"
	"github.com/hbastos/intervals-icu-mcp/internal/tools"
)

// Server speaks MCP over a JSON-RPC 2.0 connection. The stdio transport
// uses newline-delimited JSON objects, one message per line.
type Server struct {
	handler *Handler
	log     *slog.Logger
}

func NewServer(registry *tools.Registry) *Server {
	return &Server{
		handler: NewHandler(registry),
		log:     logger.ForComponent("mcp"),
	}
}

// stdioPipe joins a reader and writer into the ReadWriteCloser jsonrpc2
// streams are built on.
type stdioPipe struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioPipe) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *stdioPipe) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

func (s *stdioPipe) Close() error {
	rerr := s.reader.Close()
	werr := s.writer.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// ServeStdio serves the process's stdin/stdout until the client disconnects
// or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, &stdioPipe{reader: os.Stdin, writer: os.Stdout})
}

// Serve runs the JSON-RPC connection over rwc. Requests are dispatched
// asynchronously so concurrent tool calls do not queue behind each other;
// the handler and registry are safe for that.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.PlainObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.AsyncHandler(s))

	s.log.Info("server ready")

	select {
	case <-conn.DisconnectNotify():
		s.log.Info("client disconnected")
		return nil
	case <-ctx.Done():
		conn.Close()
		<-conn.DisconnectNotify()
		return ctx.Err()
	}
}

// Handle implements jsonrpc2.Handler.
func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Notif {
		s.handler.HandleNotification(req.Method)
		return
	}

	result, rpcErr := s.handler.Handle(ctx, req.Method, req.Params)
	if rpcErr != nil {
		if err := conn.ReplyWithError(ctx, req.ID, rpcErr); err != nil {
			s.log.Error("failed to send error reply", "method", req.Method, "error", err)
		}
		return
	}
	if err := conn.Reply(ctx, req.ID, result); err != nil {
		s.log.Error("failed to send reply", "method", req.Method, "error", err)
	}
}
