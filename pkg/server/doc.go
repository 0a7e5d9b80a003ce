// Package server provides the HTTP surface of the template service.
//
// # Routes
//
//	GET  /health                        health report, always 200
//	GET  /version                       build information
//	POST /intents/sync                  run one sync, reply with its report
//	POST /intents/trigger-entity-sync   publish templates_updated only
//	GET  /intents/templates?domain=     stored templates
//	GET  /metrics                       Prometheus metrics, when enabled
//	GET  /events                        websocket event stream, when enabled
//
// /intents/sync answers 503 when the intents could not be fetched and 500
// when they could not be stored. Error bodies are {"detail": "..."}.
//
// # Middleware
//
// Every request passes, outermost first, through panic recovery, request
// ID assignment (X-Request-ID), request logging and W3C trace context
// extraction.
//
// # Basic Usage
//
//	srv := server.NewServer(&cfg.Server, server.Deps{
//	    Syncer:    syncer,
//	    Templates: store,
//	    Health:    checker,
//	    Version:   health.NewVersionInfo(version, commit, buildTime),
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is done and then shuts down within
// server.shutdown_timeout.
package server
