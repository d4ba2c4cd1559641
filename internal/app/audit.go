package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/pipeaudit/internal/domain/calendar"
	"github.com/okian/pipeaudit/internal/domain/model"
	"github.com/okian/pipeaudit/internal/domain/normalize"
	"github.com/okian/pipeaudit/internal/domain/schema"
	"github.com/okian/pipeaudit/internal/modules/deaddeal"
	"github.com/okian/pipeaudit/internal/modules/funnel"
	"github.com/okian/pipeaudit/internal/modules/quality"
	"github.com/okian/pipeaudit/internal/modules/repperf"
	"github.com/okian/pipeaudit/internal/modules/speedtolead"
	"github.com/okian/pipeaudit/pkg/logger"
	"github.com/okian/pipeaudit/pkg/metrics"
)

const reasonNoActivities = "no activities supplied"

// Orchestrator runs all analyzer modules over one normalized dataset.
type Orchestrator struct {
	cfg *schema.Resolved

	reference     *time.Time
	windowStart   time.Time
	windowEnd     time.Time
	qualityFields []string
	normalizeByLS bool

	log logger.Logger
	met *metrics.Manager
}

// moduleDescriptor is one entry of the fixed module table the orchestrator
// iterates. There is no registration mechanism; the table below is the
// complete module set.
type moduleDescriptor struct {
	name            string
	needsActivities bool
	run             func(ctx context.Context, data normalize.Result, rep *Report)
}

// New creates an Orchestrator over a resolved configuration.
func New(cfg *schema.Resolved, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg: cfg,
		log: logger.Get().Named("audit"),
		met: metrics.Get(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run normalizes the raw rows and executes every module concurrently over
// the resulting read-only dataset. Module failures are isolated: a failed
// module is marked in the report and the rest proceed. The only error
// returned is context cancellation.
func (o *Orchestrator) Run(ctx context.Context, dealRows, activityRows []model.RawRecord) (*Report, error) {
	start := time.Now()

	data := normalize.New(o.cfg).Run(dealRows, activityRows)
	o.met.RecordRowsIngested("deals", len(dealRows))
	o.met.RecordRowsIngested("activities", len(activityRows))
	for _, q := range data.Quarantine {
		o.met.RecordQuarantine(string(q.Reason), 1)
	}

	rep := &Report{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		DealCount:       len(data.Deals),
		ActivityCount:   len(data.Activities),
		Quarantine:      data.Quarantine,
		MinQualityScore: o.cfg.Thresholds().MinQualityScore,
	}
	for _, d := range data.Deals {
		rep.TotalValue += d.Amount
		if !d.Closed() {
			rep.OpenValue += d.Amount
		}
	}

	table := o.modules()
	rep.Modules = make([]ModuleStatus, len(table))

	// Modules only read the shared dataset and each goroutine writes its
	// own slice slot and result field, so no locking is needed.
	g, gctx := errgroup.WithContext(ctx)
	for i, desc := range table {
		i, desc := i, desc
		g.Go(func() error {
			rep.Modules[i] = o.runModule(gctx, desc, data, rep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.met.RecordAuditRun()
	o.log.Info(ctx, "audit run complete",
		logger.String("run_id", rep.RunID),
		logger.Int("deals", rep.DealCount),
		logger.Int("activities", rep.ActivityCount),
		logger.Int("quarantined", len(rep.Quarantine)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return rep, nil
}

// runModule executes one module with failure isolation. A panic inside a
// module becomes that module's failure marker, never the run's.
func (o *Orchestrator) runModule(ctx context.Context, desc moduleDescriptor, data normalize.Result, rep *Report) (st ModuleStatus) {
	st = ModuleStatus{Name: desc.name}
	start := time.Now()
	defer func() {
		st.Duration = time.Since(start)
		o.met.RecordModuleDuration(desc.name, st.Duration)
		if !st.OK {
			o.met.RecordModuleFailure(desc.name)
			o.log.Warn(ctx, "module failed",
				logger.String("module", desc.name),
				logger.String("reason", st.Reason),
			)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			st.OK = false
			st.Reason = fmt.Sprintf("panic: %v", r)
		}
	}()

	if desc.needsActivities && len(data.Activities) == 0 {
		st.Reason = reasonNoActivities
		return st
	}

	desc.run(ctx, data, rep)
	st.OK = true
	return st
}

// modules builds the fixed module table for this orchestrator's
// configuration.
func (o *Orchestrator) modules() []moduleDescriptor {
	th := o.cfg.Thresholds()

	return []moduleDescriptor{
		{
			name: ModuleDeadDeals,
			run: func(_ context.Context, data normalize.Result, rep *Report) {
				opts := []deaddeal.Option{
					deaddeal.WithStaleDays(th.StaleDays),
					deaddeal.WithMinAmount(th.MinDeadAmount),
				}
				if o.reference != nil {
					opts = append(opts, deaddeal.WithReferenceTime(*o.reference))
				}
				res := deaddeal.New(opts...).Detect(data.Deals)
				rep.DeadDeals = &res
			},
		},
		{
			name:            ModuleSpeedToLead,
			needsActivities: true,
			run: func(_ context.Context, data normalize.Result, rep *Report) {
				res := speedtolead.New(
					speedtolead.WithCalendar(o.businessCalendar()),
					speedtolead.WithTargetHours(th.SpeedTargetHours),
				).Analyze(data.Deals, data.Activities)
				rep.SpeedToLead = &res
			},
		},
		{
			name: ModuleFunnel,
			run: func(_ context.Context, data normalize.Result, rep *Report) {
				opts := []funnel.Option{}
				if !o.windowStart.IsZero() || !o.windowEnd.IsZero() {
					opts = append(opts, funnel.WithWindow(o.windowStart, o.windowEnd))
				}
				res := funnel.New(o.cfg, opts...).Analyze(data.Deals)
				rep.Funnel = &res
			},
		},
		{
			name: ModuleRepPerformance,
			run: func(_ context.Context, data normalize.Result, rep *Report) {
				opts := []repperf.Option{
					repperf.WithMinSampleSize(th.MinSampleSize),
				}
				if o.normalizeByLS {
					opts = append(opts, repperf.WithLeadSourceNormalization())
				}
				res := repperf.New(opts...).Compare(data.Deals, data.Activities)
				rep.RepPerformance = &res
			},
		},
		{
			name: ModuleDataQuality,
			run: func(_ context.Context, data normalize.Result, rep *Report) {
				opts := []quality.Option{}
				if len(o.qualityFields) > 0 {
					opts = append(opts, quality.WithRequiredFields(o.qualityFields))
				}
				res := quality.New(opts...).Check(data.Deals)
				rep.DataQuality = &res
			},
		},
	}
}

func (o *Orchestrator) businessCalendar() *calendar.Calendar {
	cal := o.cfg.Calendar()
	opts := []calendar.Option{}
	if cal.BusinessHoursOnly {
		opts = append(opts, calendar.WithBusinessHours(cal.WorkdayStartHour, cal.WorkdayEndHour))
	}
	if cal.ExcludeWeekends {
		opts = append(opts, calendar.WithWeekendsExcluded())
	}
	return calendar.New(opts...)
}
