package syncer

import (
	"time"

	"alice-hq/hassil-parser/pkg/intents"
)

// Report summarises one sync run.
type Report struct {
	RunID         string    `json:"run_id"`
	Source        string    `json:"source"`
	Language      string    `json:"language"`
	StartedAt     time.Time `json:"started_at"`
	Domains       int       `json:"domains"`
	FailedDomains []string  `json:"failed_domains,omitempty"`
	Intents       int       `json:"intents"`
	Templates     int       `json:"templates"`
	Fallbacks     int       `json:"fallbacks"`
	Dropped       int       `json:"dropped"`
	Inserted      int       `json:"inserted"`
	Updated       int       `json:"updated"`
	Skipped       int       `json:"skipped"`
	Published     bool      `json:"published"`
	DryRun        bool      `json:"dry_run,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
}

func (r *Report) addStats(stats intents.Stats) {
	r.Intents += stats.Intents
	r.Templates += stats.Templates
	r.Fallbacks += stats.Fallbacks
	r.Dropped += stats.Dropped
}
