// Package pipeline implements the hiring funnel: status ranks, aggregate
// counter maintenance, job status derivation, and transition materialization.
// It is pure and free of storage concerns; the data layer invokes it inside
// the transaction that writes both the application and its parent job.
package pipeline

import (
	"math"

	"github.com/backlot/backlot-api/internal/domain/model"
)

// rankCounter binds an aggregate counter to the funnel rank that feeds it.
// A counter tracks how many applications currently sit at or beyond its rank.
type rankCounter struct {
	threshold int
	get       func(*model.JobProgress) *int
}

// counters in ascending threshold order. applications_received has no
// threshold: it is incremented once at apply time and never recounted.
var rankCounters = []rankCounter{
	{threshold: 1, get: func(p *model.JobProgress) *int { return &p.ApplicationsReviewed }},
	{threshold: 2, get: func(p *model.JobProgress) *int { return &p.InterviewsScheduled }},
	{threshold: 3, get: func(p *model.JobProgress) *int { return &p.OffersExtended }},
	{threshold: 4, get: func(p *model.JobProgress) *int { return &p.HiredCandidates }},
}

// ApplyRankChange returns the progress aggregate after moving one application
// from prevRank to newRank. For each counter, only transitions that cross the
// counter's threshold change it, by exactly one, so replaying a transition
// that is already reflected in the aggregate is a no-op. Counters are clamped
// at zero and hired candidates at the number of open positions.
func ApplyRankChange(p model.JobProgress, prevRank, newRank, positions int) model.JobProgress {
	for _, c := range rankCounters {
		wasAt := prevRank >= c.threshold
		nowAt := newRank >= c.threshold
		v := c.get(&p)
		switch {
		case nowAt && !wasAt:
			*v++
		case wasAt && !nowAt && *v > 0:
			*v--
		}
	}

	if positions > 0 && p.HiredCandidates > positions {
		p.HiredCandidates = positions
	}

	p.ProgressPercentage = progressPercentage(p)
	return p
}

// RecordApplication returns the aggregate after a new application arrives.
// applications_received is only ever incremented here; status transitions
// never touch it.
func RecordApplication(p model.JobProgress) model.JobProgress {
	p.ApplicationsReceived++
	p.ProgressPercentage = progressPercentage(p)
	return p
}

// progressPercentage recomputes the processed share from the stored counters
// and the stored applications_received. Clamped to [0, 100]: an application
// deep in the funnel contributes to several counters at once.
func progressPercentage(p model.JobProgress) int {
	if p.ApplicationsReceived <= 0 {
		return 0
	}
	processed := p.ApplicationsReviewed + p.InterviewsScheduled + p.OffersExtended + p.HiredCandidates
	pct := int(math.Round(float64(processed) / float64(p.ApplicationsReceived) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// DeriveJobStatus returns the job status implied by the hired count.
// Hitting the position count forces filled; dropping back below it reverts a
// filled job to active. Every other status is left untouched.
func DeriveJobStatus(current model.JobStatus, hired, positions int) model.JobStatus {
	if positions > 0 && hired >= positions {
		return model.JobStatusFilled
	}
	if current == model.JobStatusFilled {
		return model.JobStatusActive
	}
	return current
}
