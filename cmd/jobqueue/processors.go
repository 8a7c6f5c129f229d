package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/xraph/jobqueue/job"
)

// errTransient is returned by the demo processors to exercise retries.
var errTransient = errors.New("transient upstream error")

type auditRequest struct {
	ClientID     string `json:"client_id"`
	Transactions int    `json:"transactions"`
}

type auditReport struct {
	ClientID string `json:"client_id"`
	Reviewed int    `json:"reviewed"`
	Flagged  int    `json:"flagged"`
}

type optimizeRequest struct {
	PortfolioID string `json:"portfolio_id"`
	Assets      int    `json:"assets"`
}

type optimizeReport struct {
	PortfolioID string  `json:"portfolio_id"`
	Score       float64 `json:"score"`
}

// simulate sleeps for d unless ctx ends first, and fails with probability
// failRate.
func simulate(ctx context.Context, d time.Duration, failRate float64) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	if failRate > 0 && rand.Float64() < failRate {
		return errTransient
	}
	return nil
}

func auditProcessor(perItem time.Duration, failRate float64) job.Processor {
	return job.Typed(func(ctx context.Context, req auditRequest) (any, error) {
		if err := simulate(ctx, time.Duration(req.Transactions)*perItem, failRate); err != nil {
			return nil, err
		}
		return auditReport{
			ClientID: req.ClientID,
			Reviewed: req.Transactions,
			Flagged:  req.Transactions / 10,
		}, nil
	})
}

func optimizeProcessor(perItem time.Duration, failRate float64) job.Processor {
	return job.Typed(func(ctx context.Context, req optimizeRequest) (any, error) {
		if err := simulate(ctx, time.Duration(req.Assets)*perItem, failRate); err != nil {
			return nil, err
		}
		score := 1.0
		if req.Assets > 0 {
			score = 1 - 1/float64(req.Assets+1)
		}
		return optimizeReport{PortfolioID: req.PortfolioID, Score: score}, nil
	})
}
