// Package loadtest drives a running server with concurrent rating updates and
// checks the leaderboard it serves afterwards.
package loadtest

import (
	"errors"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/types"
)

// Sentinel kinds for load test errors.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrRequest      = errors.New("request failed")
	ErrInconsistent = errors.New("leaderboard inconsistent")
)

// Config holds the load test settings.
type Config struct {
	BaseURL       string        // server origin
	NumEvents     int           // rating updates to submit
	DuplicateRate float64       // share of updates that resend an earlier event id
	TopN          int           // leaderboard entries to fetch
	Workers       int           // concurrent submitters
	Timeout       time.Duration // per-request timeout
	Token         string        // optional bearer token, enables cloud sync
	OutputFile    string        // where generated events are written; empty skips
	Verbose       bool
}

// Event is one rating update sent to the server.
type Event struct {
	EventID  string  `json:"event_id"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Note     string  `json:"note,omitempty"`
}

// Entry is a leaderboard row as served over HTTP.
type Entry = types.Entry

// Stats holds load test statistics.
type Stats struct {
	EventsGenerated    int
	EventsSubmitted    int
	EventsLocal        int
	EventsQueued       int
	EventsDuplicate    int
	EventsDropped      int
	EventsFailed       int
	RanksChecked       int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
