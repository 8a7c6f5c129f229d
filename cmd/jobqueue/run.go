package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/jobqueue"
	audithook "github.com/xraph/jobqueue/audit_hook"
	"github.com/xraph/jobqueue/id"
	"github.com/xraph/jobqueue/job"
	"github.com/xraph/jobqueue/queue"
	"github.com/xraph/jobqueue/worker"
)

type runOptions struct {
	jobs         int
	submitters   int
	concurrency  int
	timeout      time.Duration
	retryDelay   time.Duration
	maxRetries   int
	failRate     float64
	perItem      time.Duration
	pollInterval time.Duration
	maxHistory   int
	audit        bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a batch of demo audit and optimize jobs and wait for them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := root.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats, err := runDemo(ctx, logger, opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.jobs, "jobs", 20, "number of jobs to submit")
	f.IntVar(&opts.submitters, "submitters", 4, "number of concurrent submitters")
	f.IntVar(&opts.concurrency, "concurrency", 2, "concurrency of each worker")
	f.DurationVar(&opts.timeout, "timeout", 5*time.Second, "per-attempt timeout")
	f.DurationVar(&opts.retryDelay, "retry-delay", 100*time.Millisecond, "delay before a failed job is retried")
	f.IntVar(&opts.maxRetries, "max-retries", 3, "retries after the first failed attempt")
	f.Float64Var(&opts.failRate, "fail-rate", 0.2, "probability that an attempt fails")
	f.DurationVar(&opts.perItem, "work", 2*time.Millisecond, "simulated work per transaction or asset")
	f.DurationVar(&opts.pollInterval, "poll-interval", time.Second, "fallback dispatch interval")
	f.IntVar(&opts.maxHistory, "max-history", 0, "finished jobs to keep (0 keeps all)")
	f.BoolVar(&opts.audit, "audit", false, "log an audit trail of job lifecycle events")
	return cmd
}

// runDemo registers the demo workers, submits opts.jobs jobs from
// concurrent submitters and waits until every job has finished.
func runDemo(ctx context.Context, logger *slog.Logger, opts *runOptions) (job.Stats, error) {
	cfg := jobqueue.DefaultConfig()
	cfg.PollInterval = opts.pollInterval
	cfg.DefaultMaxRetries = opts.maxRetries
	cfg.MaxHistory = opts.maxHistory
	if cfg.MaxHistory > 0 {
		cfg.JanitorInterval = time.Second
	}

	qopts := []queue.Option{queue.WithConfig(cfg), queue.WithLogger(logger)}
	if opts.audit {
		qopts = append(qopts, queue.WithExtension(
			audithook.New(audithook.LogRecorder(logger.With(slog.String("component", "audit"))),
				audithook.WithLogger(logger)),
		))
	}
	q := queue.New(qopts...)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := q.Close(closeCtx); err != nil {
			logger.Warn("queue close", slog.String("error", err.Error()))
		}
	}()

	wcfg := worker.Config{
		Concurrency: opts.concurrency,
		Timeout:     opts.timeout,
		RetryDelay:  opts.retryDelay,
	}
	auditCfg := wcfg
	auditCfg.JobTypes = []string{"audit"}
	optimizeCfg := wcfg
	optimizeCfg.JobTypes = []string{"optimize"}
	q.RegisterWorker("auditor", auditProcessor(opts.perItem, opts.failRate), auditCfg)
	q.RegisterWorker("optimizer", optimizeProcessor(opts.perItem, opts.failRate), optimizeCfg)

	var (
		mu  sync.Mutex
		ids = make([]id.JobID, 0, opts.jobs)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.submitters, 1))
	for i := range opts.jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var jobID id.JobID
			if i%2 == 0 {
				jobID = q.AddJob("audit", auditRequest{
					ClientID:     fmt.Sprintf("client-%03d", i),
					Transactions: 10 + i%7,
				}, job.WithPriority(i%3))
			} else {
				jobID = q.AddJob("optimize", optimizeRequest{
					PortfolioID: fmt.Sprintf("portfolio-%03d", i),
					Assets:      5 + i%4,
				}, job.WithMetadata(map[string]any{"requested_by": "demo"}))
			}
			mu.Lock()
			ids = append(ids, jobID)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return job.Stats{}, err
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		stats := q.GetQueueStats()
		if stats.Pending == 0 && stats.Running == 0 {
			logger.Info("all jobs finished",
				slog.Int("submitted", len(ids)),
				slog.Int("completed", stats.Completed),
				slog.Int("failed", stats.Failed),
			)
			return stats, nil
		}
		select {
		case <-ctx.Done():
			return stats, context.Cause(ctx)
		case <-ticker.C:
		}
	}
}
