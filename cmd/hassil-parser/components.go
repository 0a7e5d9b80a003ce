package main

import (
	"errors"
	"log/slog"

	"alice-hq/hassil-parser/pkg/config"
	"alice-hq/hassil-parser/pkg/events"
	"alice-hq/hassil-parser/pkg/orchestrator"
	"alice-hq/hassil-parser/pkg/source"
	"alice-hq/hassil-parser/pkg/storage"
	"alice-hq/hassil-parser/pkg/syncer"
	"alice-hq/hassil-parser/pkg/telemetry/metrics"
)

// pipeline holds the components shared by serve and sync.
type pipeline struct {
	store     storage.Store
	hub       *events.Hub // Nil when events are disabled
	collector *metrics.Collector
	syncer    *syncer.Syncer
}

// newOrchestrator builds the expansion orchestrator from the expansion
// section. rec may be nil.
func newOrchestrator(cfg *config.ExpansionConfig, logger *slog.Logger, rec orchestrator.Recorder) *orchestrator.Orchestrator {
	return orchestrator.New(orchestratorOptions(cfg, logger, rec))
}

func orchestratorOptions(cfg *config.ExpansionConfig, logger *slog.Logger, rec orchestrator.Recorder) orchestrator.Options {
	return orchestrator.Options{
		External:        cfg.ExternalEngine,
		MaxPatterns:     cfg.MaxPatterns,
		MaxRuleDepth:    cfg.MaxRuleDepth,
		ExplosionFactor: cfg.ExplosionFactor,
		Logger:          logger,
		Recorder:        rec,
	}
}

// newPipeline wires source, store, events and syncer. A dry run uses an
// in-memory store and never publishes.
func newPipeline(cfg *config.Config, logger *slog.Logger, dryRun bool) (*pipeline, error) {
	p := &pipeline{collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil)}

	src, err := source.New(&cfg.Source, cfg.Expansion.Language, logger)
	if err != nil {
		return nil, err
	}

	if dryRun {
		p.store = storage.NewMemoryStore()
	} else if p.store, err = storage.New(&cfg.Storage); err != nil {
		return nil, err
	}

	var publisher events.Publisher
	if cfg.Events.Enabled && !dryRun {
		var sinks events.Fanout
		if cfg.Events.MQTT.URL != "" {
			mq, err := events.NewMQTTPublisher(&cfg.Events, logger)
			if err != nil {
				_ = p.store.Close()
				return nil, err
			}
			sinks = append(sinks, mq)
		} else {
			logger.Warn("events.mqtt.url not set, templates_updated only reaches websocket subscribers")
		}
		p.hub = events.NewHub(&cfg.Events, logger)
		publisher = append(sinks, p.hub)
	}

	p.syncer = syncer.New(src, p.store, publisher,
		newOrchestrator(&cfg.Expansion, logger, p.collector),
		syncer.Options{
			Workers:   cfg.Expansion.Workers,
			Language:  cfg.Expansion.Language,
			SourceTag: cfg.Source.Tag,
			DryRun:    dryRun,
			Timeout:   cfg.Sync.Timeout,
			Logger:    logger.With("component", "syncer"),
			Recorder:  p.collector,
		})
	return p, nil
}

// Close releases the store and disconnects event subscribers.
func (p *pipeline) Close() error {
	var hubErr error
	if p.hub != nil {
		hubErr = p.hub.Close()
	}
	return errors.Join(hubErr, p.store.Close())
}
