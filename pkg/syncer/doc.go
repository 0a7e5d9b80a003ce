// Package syncer runs the template sync pipeline.
//
// A run fetches every document of the configured language from a
// source.Source, builds the shared rule table from the _common document,
// expands each domain document in parallel through the orchestrator,
// upserts the resulting rows and publishes a templates_updated event:
//
//	fetch -> merge common -> expand domains -> upsert -> publish
//
// Domains are expanded by at most Options.Workers goroutines. Their rows
// are reassembled in sorted domain order, so a run's output does not
// depend on scheduling. A domain that fails is logged and left out; the
// run continues. Fetch and storage failures end the run with a
// *source.FetchError or *storage.StorageError. A publish failure is only
// logged.
//
// Runs are serialised: a run started while another is in progress waits
// for it to finish.
//
// Scheduler triggers runs on a cron schedule.
package syncer
