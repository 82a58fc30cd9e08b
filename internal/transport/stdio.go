package transport

import (
	"context"
	"io"

	"github.com/HendryAvila/chatdesk/internal/logger"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// ServeStdio serves s over in/out until ctx is cancelled or in closes.
// stdout carries protocol frames only; everything the transport logs goes
// through zl, which must not write to out.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, zl zerolog.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(logger.Std(zl, "stdio"))

	zl.Info().Msg("stdio transport ready")
	err := stdio.Listen(ctx, in, out)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
