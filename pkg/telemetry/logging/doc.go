// Package logging builds the process *slog.Logger.
//
// The logger writes JSON, text or console output, masks credentials in
// attribute values, and adds run_id, domain and intent attributes to
// records logged with a context prepared by WithRunID, WithDomain and
// WithIntent.
//
// # Usage
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging)
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "sync started") // carries run_id
//
// Components that are not handed a logger use
// slog.Default().With("component", "<area>"), which Setup installs.
package logging
