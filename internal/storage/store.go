package storage

import (
	"context"

	"hypertune/internal/model"
)

// Store persists finished tuning runs and their evaluation histories.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveHistory(ctx context.Context, runID string, points []model.HistoryPoint) error
	GetHistory(ctx context.Context, runID string) ([]model.HistoryPoint, bool, error)
}
