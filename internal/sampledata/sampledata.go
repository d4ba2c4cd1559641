// Package sampledata generates deterministic synthetic CRM exports for
// demos and smoke testing. The dataset deliberately includes hygiene
// defects (missing fields, duplicate emails, stale deals, slow responses)
// so every audit module has something to report.
package sampledata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"
)

// Generation shape constants.
const (
	defaultDeals   = 200
	defaultSeed    = 42
	historyDays    = 180
	maxDealAmount  = 50_000
	minDealAmount  = 500
	staleShare     = 6  // every Nth open deal gets a months-old update
	missingShare   = 9  // every Nth deal loses its contact email
	dupEmailShare  = 17 // every Nth deal reuses a previous email
	slowTouchHours = 72
	fastTouchHours = 2
)

var (
	owners  = []string{"Alice Nguyen", "Ben Ortiz", "Carla Mendes", "Dmitri Volkov", "Erin Walsh"}
	sources = []string{"inbound", "outbound", "referral", "event", ""}
	stages  = []string{"Lead", "Qualified", "Demo", "Proposal", "Negotiation", "Closed Won"}
)

// Generator writes paired deals and activities CSV exports.
type Generator struct {
	deals int
	seed  int64
	now   time.Time
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithDealCount sets the number of generated deals.
func WithDealCount(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.deals = n
		}
	}
}

// WithSeed sets the random seed for reproducible datasets.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithNow pins the generation reference time.
func WithNow(now time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// New creates a Generator with the given options.
func New(opts ...Option) *Generator {
	g := &Generator{
		deals: defaultDeals,
		seed:  defaultSeed,
		now:   time.Now().UTC().Truncate(time.Hour),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Write emits the deals export to dealsW and the activities export to
// actsW. Output is deterministic for a given seed and reference time.
func (g *Generator) Write(dealsW, actsW io.Writer) error {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic sample data

	dw := csv.NewWriter(dealsW)
	aw := csv.NewWriter(actsW)

	if err := dw.Write([]string{
		"deal_id", "name", "stage", "amount", "created_at", "updated_at",
		"closed_at", "owner", "status", "lead_source", "email", "phone",
	}); err != nil {
		return fmt.Errorf("write deals header: %w", err)
	}
	if err := aw.Write([]string{"activity_id", "deal_id", "ts", "type", "qualifying"}); err != nil {
		return fmt.Errorf("write activities header: %w", err)
	}

	var lastEmail string
	activitySeq := 0
	for i := 0; i < g.deals; i++ {
		id := fmt.Sprintf("D-%04d", i+1)
		owner := owners[rng.Intn(len(owners))]
		source := sources[rng.Intn(len(sources))]
		stageIdx := rng.Intn(len(stages))
		amount := minDealAmount + rng.Float64()*(maxDealAmount-minDealAmount)

		created := g.now.AddDate(0, 0, -rng.Intn(historyDays)).Add(-time.Duration(rng.Intn(24)) * time.Hour)
		updated := created.Add(time.Duration(rng.Intn(historyDays/2*24)) * time.Hour)
		if updated.After(g.now) {
			updated = g.now
		}

		status := "open"
		closed := ""
		switch {
		case stageIdx == len(stages)-1:
			status = "won"
			closed = updated.Format(time.RFC3339)
		case rng.Intn(4) == 0:
			status = "lost"
			closed = updated.Format(time.RFC3339)
		case i%staleShare == 0:
			// leave open but months out of date
			updated = created
		}

		email := fmt.Sprintf("contact%d@example.com", i+1)
		switch {
		case i%missingShare == 0:
			email = ""
		case i%dupEmailShare == 0 && lastEmail != "":
			email = lastEmail
		}
		if email != "" {
			lastEmail = email
		}
		phone := fmt.Sprintf("+1 555 %04d", rng.Intn(10_000))

		if err := dw.Write([]string{
			id,
			fmt.Sprintf("Sample Deal %d", i+1),
			stages[stageIdx],
			fmt.Sprintf("%.2f", amount),
			created.Format(time.RFC3339),
			updated.Format(time.RFC3339),
			closed,
			owner,
			status,
			source,
			email,
			phone,
		}); err != nil {
			return fmt.Errorf("write deal row: %w", err)
		}

		// Most deals get a first touch; some reps are consistently slow
		// and a slice of deals never hears back at all.
		if rng.Intn(8) != 0 {
			delay := time.Duration(fastTouchHours+rng.Intn(slowTouchHours)) * time.Hour
			if owner == owners[len(owners)-1] {
				delay += slowTouchHours * time.Hour
			}
			activitySeq++
			if err := aw.Write([]string{
				"A-" + strconv.Itoa(activitySeq),
				id,
				created.Add(delay).Format(time.RFC3339),
				[]string{"call", "email", "meeting"}[rng.Intn(3)],
				"true",
			}); err != nil {
				return fmt.Errorf("write activity row: %w", err)
			}
		}
	}

	dw.Flush()
	aw.Flush()
	if err := dw.Error(); err != nil {
		return fmt.Errorf("flush deals: %w", err)
	}
	if err := aw.Error(); err != nil {
		return fmt.Errorf("flush activities: %w", err)
	}
	return nil
}
