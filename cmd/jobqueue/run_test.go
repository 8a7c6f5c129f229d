package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xraph/jobqueue/id"
	"github.com/xraph/jobqueue/job"
)

func TestRunCmd(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{
		"run",
		"--jobs", "8",
		"--fail-rate", "0",
		"--work", "100us",
		"--log-level", "warn",
		"--audit",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v (stderr: %s)", err, errOut.String())
	}

	var stats job.Stats
	if err := json.Unmarshal(out.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats %q: %v", out.String(), err)
	}
	if stats.Total != 8 || stats.Completed != 8 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRunCmd_InvalidLogFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--jobs", "1", "--log-format", "xml"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "log-format") {
		t.Fatalf("err = %v, want log-format error", err)
	}
}

func TestAuditProcessor(t *testing.T) {
	p := auditProcessor(0, 0)
	res, err := p(context.Background(), &job.Job{
		ID:      id.NewJobID(),
		Type:    "audit",
		Payload: auditRequest{ClientID: "c1", Transactions: 25},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := res.(auditReport)
	if report.ClientID != "c1" || report.Reviewed != 25 || report.Flagged != 2 {
		t.Fatalf("report = %+v", report)
	}
}

func TestOptimizeProcessor_JSONPayload(t *testing.T) {
	p := optimizeProcessor(0, 0)
	res, err := p(context.Background(), &job.Job{
		ID:      id.NewJobID(),
		Type:    "optimize",
		Payload: json.RawMessage(`{"portfolio_id":"p1","assets":3}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report := res.(optimizeReport)
	if report.PortfolioID != "p1" || report.Score != 0.75 {
		t.Fatalf("report = %+v", report)
	}
}

func TestSimulate(t *testing.T) {
	if err := simulate(context.Background(), 0, 1); !errors.Is(err, errTransient) {
		t.Fatalf("err = %v, want transient", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := simulate(ctx, time.Hour, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want canceled", err)
	}
}
