package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HendryAvila/chatdesk/internal/config"
	"github.com/HendryAvila/chatdesk/internal/metrics"
	"github.com/HendryAvila/chatdesk/internal/server"
	"github.com/HendryAvila/chatdesk/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		transportName string
		host          string
		port          int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server on stdio (default) or streamable HTTP.

Over HTTP the MCP endpoint is /mcp; /healthz and /metrics are served alongside.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("transport") {
				a.cfg.Server.Transport = transportName
			}
			if flags.Changed("host") {
				a.cfg.Server.Host = host
			}
			if flags.Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVarP(&transportName, "transport", "t", config.TransportStdio, "transport: stdio or http")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "HTTP listen host")
	cmd.Flags().IntVarP(&port, "port", "p", 8087, "HTTP listen port")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	st, cleanup, err := a.openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := server.New(a.cfg.Server, server.Deps{
		Store:   st,
		Logger:  a.log,
		Metrics: metrics.New(reg),
	})

	a.log.Info().
		Str("transport", a.cfg.Server.Transport).
		Str("driver", a.cfg.Database.Driver).
		Str("version", server.Version).
		Msg("starting chatdesk")

	switch a.cfg.Server.Transport {
	case config.TransportHTTP:
		router := transport.NewRouter(s, transport.HTTPOptions{
			Logger:   a.log,
			Health:   st,
			Gatherer: reg,
		})
		return transport.ServeHTTP(ctx, a.cfg.Server.Addr(), router, a.log)
	case config.TransportStdio:
		return transport.ServeStdio(ctx, s, os.Stdin, os.Stdout, a.log)
	default:
		return fmt.Errorf("unknown transport %q", a.cfg.Server.Transport)
	}
}
