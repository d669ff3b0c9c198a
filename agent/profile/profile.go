// Package profile persists the long-lived business profile that survives
// individual runs and seeds operating-mode context.
package profile

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("business profile not found")
	ErrNilProfile = errors.New("business profile is nil")
)

// maxRecentDecisions bounds the decision log; oldest entries are evicted.
const maxRecentDecisions = 50

// Profile is the durable business record shared across runs.
type Profile struct {
	BusinessProfile map[string]any `json:"business_profile"`
	Metrics         map[string]any `json:"metrics"`
	Priorities      []string       `json:"priorities"`
	ActiveIssues    []string       `json:"active_issues"`
	OngoingProjects []string       `json:"ongoing_projects"`
	RecentDecisions []Decision     `json:"recent_decisions"`
	LastUpdated     time.Time      `json:"last_updated"`
}

type Decision struct {
	Timestamp time.Time `json:"timestamp"`
	Summary   string    `json:"summary"`
}

func NewProfile() *Profile {
	return &Profile{
		BusinessProfile: map[string]any{},
		Metrics:         map[string]any{},
		Priorities:      []string{},
		ActiveIssues:    []string{},
		OngoingProjects: []string{},
		RecentDecisions: []Decision{},
	}
}

// AddDecision prepends the decision, keeping the newest entries first and the
// log bounded.
func (p *Profile) AddDecision(summary string, at time.Time) {
	p.RecentDecisions = append([]Decision{{Timestamp: at, Summary: summary}}, p.RecentDecisions...)
	if len(p.RecentDecisions) > maxRecentDecisions {
		p.RecentDecisions = p.RecentDecisions[:maxRecentDecisions]
	}
	p.LastUpdated = at
}

// Store is the persistence contract for the business profile.
type Store interface {
	Load(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}
