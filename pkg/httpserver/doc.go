// Package httpserver runs the process HTTP listener and serves its health
// probes.
//
// Server.Run blocks until the context is cancelled and then shuts the server
// down gracefully:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.Liveness())
//	r.Get("/readyz", httpserver.Readiness(log, cfg.ProbeTimeout, map[string]httpserver.Check{
//		"postgres": pg.Healthcheck(pool),
//	}))
//	err := httpserver.New(cfg, httpserver.WithLogger(log)).Run(ctx, r)
package httpserver
