package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	drepo "SmartShop/internal/domain/repository"
	applogger "SmartShop/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Pruner drops expired entries from a store.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// PruneJob periodically prunes the review cache and the rate-limit store so
// lazily evicted entries do not pile up.
type PruneJob struct {
	cron    *cron.Cron
	targets map[string]Pruner
	names   []string
	timeout time.Duration
	metrics drepo.Metrics
	log     *applogger.Logger
}

// NewPruneJob schedules every target on spec, e.g. "@every 5m".
func NewPruneJob(spec string, targets map[string]Pruner, metrics drepo.Metrics, log *applogger.Logger) (*PruneJob, error) {
	if len(targets) == 0 {
		return nil, errors.New("prune job: no targets")
	}
	j := &PruneJob{
		cron:    cron.New(),
		targets: targets,
		timeout: 30 * time.Second,
		metrics: metrics,
		log:     log.With(applogger.String("component", "prune_job")),
	}
	for name := range targets {
		j.names = append(j.names, name)
	}
	sort.Strings(j.names)

	if _, err := j.cron.AddFunc(spec, func() { j.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("prune job schedule %q: %w", spec, err)
	}
	return j, nil
}

// RunOnce prunes every target and returns the removed count per target.
// A failing target does not stop the others.
func (j *PruneJob) RunOnce(ctx context.Context) map[string]int {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	removed := make(map[string]int, len(j.names))
	for _, name := range j.names {
		start := time.Now()
		n, err := j.targets[name].Prune(ctx)
		j.metrics.RecordLatency("prune_"+name, time.Since(start))
		if err != nil {
			j.metrics.RecordError("prune_" + name)
			j.log.Warn("prune failed", applogger.String("target", name), applogger.Error(err))
			continue
		}
		removed[name] = n
		if n > 0 {
			j.log.Debug("pruned", applogger.String("target", name), applogger.Int("removed", n))
		}
	}
	return removed
}

func (j *PruneJob) Start() {
	j.log.Info("prune job started", applogger.Strings("targets", j.names))
	j.cron.Start()
}

// Stop waits for a running prune to finish.
func (j *PruneJob) Stop() {
	<-j.cron.Stop().Done()
}
