package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service runs background work on a single worker goroutine and records
// every attempt in job_runs. Failed jobs are requeued with a delay until
// maxAttempts is reached.
type Service struct {
	DB          *pgxpool.Pool
	queue       chan job
	maxAttempts int
	retryDelay  time.Duration
}

type job struct {
	Type    string
	Attempt int
	Run     func(context.Context) (any, error)
}

func New(db *pgxpool.Pool) *Service {
	return &Service{
		DB:          db,
		queue:       make(chan job, 128),
		maxAttempts: 5,
		retryDelay:  30 * time.Second,
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	s.enqueue(job{Type: jobType, Attempt: 1, Run: run})
}

func (s *Service) enqueue(j job) {
	select {
	case s.queue <- j:
	default:
		slog.Warn("job queue full", "jobType", j.Type)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "attempt", j.Attempt, "err", err)
				s.retryLater(ctx, j)
			}
		}
	}
}

func (s *Service) retryLater(ctx context.Context, j job) {
	if j.Attempt >= s.maxAttempts {
		slog.Error("job abandoned", "jobType", j.Type, "attempts", j.Attempt)
		return
	}
	next := job{Type: j.Type, Attempt: j.Attempt + 1, Run: j.Run}
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(s.retryDelay):
			s.enqueue(next)
		}
	}()
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := uuid.NewString()
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO job_runs (id, job_type, attempt, status)
    VALUES ($1,$2,$3,'running')
  `, runID, j.Type, j.Attempt); err != nil {
		slog.Warn("job run insert failed", "err", err)
		runID = ""
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}
