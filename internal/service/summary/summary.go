// Package summary runs the AI monthly-analysis task. The call is a single
// request/response with explicit lifecycle states instead of a bare
// "isGenerating" flag: idle, pending, succeeded or failed, with cancellation
// through a stored CancelFunc. One generation may be in flight at a time; no
// retry, no streaming.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/domain/models"
	"github.com/mamadbah2/milltrack/pkg/clients/anthropic"
)

// ErrGenerationInFlight signals that a summary is already being generated.
var ErrGenerationInFlight = errors.New("summary generation already in progress")

// ErrDisabled signals that no AI client is configured.
var ErrDisabled = errors.New("ai summary is not configured")

// Status is the lifecycle state of the summary task.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is a snapshot of the task, safe to hand to the HTTP layer.
type State struct {
	Status     Status    `json:"status"`
	Month      string    `json:"month,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt,omitzero"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

const systemPrompt = `You are a production analyst for a textile mill. Given one month of production batch data, write a short analysis: overall output, machine utilisation, notable batches, and anything delayed. Use markdown headers and bullet points. Be concise and concrete; do not invent numbers that are not in the data.`

// Service owns the single in-flight generation.
type Service struct {
	client anthropic.Client
	logger *zap.Logger
	notify func(string)
	now    func() time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	gen    int
}

// NewService wires the summary task. client may be nil, which disables the
// feature. notify, when non-nil, receives a transient message on failure.
func NewService(client anthropic.Client, notify func(string), logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		logger: logger,
		notify: notify,
		now:    time.Now,
		state:  State{Status: StatusIdle},
	}
}

// Enabled reports whether an AI client is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// State returns the current task snapshot.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches a generation for the given month. Exactly one may be pending;
// callers disable their trigger control while it is.
func (s *Service) Start(report models.MonthlyReport, companyName string) error {
	if s.client == nil {
		return ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status == StatusPending {
		return ErrGenerationInFlight
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	s.state = State{
		Status:    StatusPending,
		Month:     report.Month,
		StartedAt: s.now(),
	}

	go s.run(ctx, s.gen, report, companyName)
	return nil
}

// Cancel aborts a pending generation and returns the task to idle. Cancelling
// when nothing is pending is a no-op.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.state.Status == StatusPending {
		s.state = State{Status: StatusIdle}
	}
}

// Dismiss clears a finished (succeeded or failed) result back to idle.
func (s *Service) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status != StatusPending {
		s.state = State{Status: StatusIdle}
	}
}

func (s *Service) run(ctx context.Context, gen int, report models.MonthlyReport, companyName string) {
	text, err := s.client.Summarize(ctx, systemPrompt, buildPrompt(report, companyName))

	s.mu.Lock()
	defer s.mu.Unlock()

	// A cancellation (possibly followed by a newer Start) owns the state now;
	// drop whatever came back for the stale generation.
	if gen != s.gen || s.state.Status != StatusPending {
		return
	}
	s.cancel = nil

	finished := s.now()
	if err != nil {
		s.logger.Error("summary generation failed", zap.String("month", report.Month), zap.Error(err))
		s.state = State{
			Status:     StatusFailed,
			Month:      report.Month,
			Error:      err.Error(),
			StartedAt:  s.state.StartedAt,
			FinishedAt: finished,
		}
		if s.notify != nil {
			s.notify("AI summary failed")
		}
		return
	}

	s.state = State{
		Status:     StatusSucceeded,
		Month:      report.Month,
		Summary:    text,
		StartedAt:  s.state.StartedAt,
		FinishedAt: finished,
	}
}

// buildPrompt flattens the month's numbers into the free-text request.
func buildPrompt(report models.MonthlyReport, companyName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", companyName)
	fmt.Fprintf(&b, "Month: %s\n", report.Month)
	fmt.Fprintf(&b, "Total batches: %d\n", report.TotalBatches)
	fmt.Fprintf(&b, "Total meters produced: %.2f\n", report.TotalMeter)
	fmt.Fprintf(&b, "Total folds (ftotal): %d\n", report.TotalFTotal)
	if report.TopMachine != nil {
		fmt.Fprintf(&b, "Busiest machine: %d\n", *report.TopMachine)
	}
	for status, count := range report.StatusCounts {
		fmt.Fprintf(&b, "Batches %s: %d\n", status, count)
	}

	b.WriteString("\nBatches:\n")
	for _, batch := range report.Batches {
		fmt.Fprintf(&b, "- %s on machine %d: %.2f m, %d folds, avg %.2f, %s (%s to %s)\n",
			batch.BatchNumber, batch.MachineNumber, batch.MeterValue,
			batch.FTotal, batch.Average, batch.Status,
			batch.StartDate, batch.EndDate)
	}
	return b.String()
}
