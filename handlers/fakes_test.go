package handlers

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
}

type fakePredictionService struct {
	submitFn func(ctx context.Context, userID int, items []models.PredictionInput, now time.Time) error
	listed   []models.PredictionView
	listErr  error
}

func (f *fakePredictionService) Submit(ctx context.Context, userID int, items []models.PredictionInput, now time.Time) error {
	return f.submitFn(ctx, userID, items, now)
}

func (f *fakePredictionService) ListMine(ctx context.Context, userID int) ([]models.PredictionView, error) {
	return f.listed, f.listErr
}

func (f *fakePredictionService) ListForUser(ctx context.Context, userID int) ([]models.PredictionView, error) {
	return f.listed, f.listErr
}

func (f *fakePredictionService) ListAll(ctx context.Context) ([]models.PredictionView, error) {
	return f.listed, f.listErr
}

type fakeScoringService struct {
	recordFn func(ctx context.Context, matchID, home, away int) (*models.MatchScoreSummary, error)
	oneFn    func(ctx context.Context, matchID int) (*models.MatchScoreSummary, error)
	report   *models.RecalculationReport
}

func (f *fakeScoringService) RecordResult(ctx context.Context, matchID, homeScore, awayScore int) (*models.MatchScoreSummary, error) {
	return f.recordFn(ctx, matchID, homeScore, awayScore)
}

func (f *fakeScoringService) RecalculateOne(ctx context.Context, matchID int) (*models.MatchScoreSummary, error) {
	return f.oneFn(ctx, matchID)
}

func (f *fakeScoringService) RecalculateAll(ctx context.Context) (*models.RecalculationReport, error) {
	return f.report, nil
}

type fakeDeadlineService struct {
	views    []models.DeadlineView
	updateFn func(ctx context.Context, stage string, update models.DeadlineUpdate, now time.Time) (*models.DeadlineView, error)
}

func (f *fakeDeadlineService) List(ctx context.Context, now time.Time) ([]models.DeadlineView, error) {
	return f.views, nil
}

func (f *fakeDeadlineService) Update(ctx context.Context, stage string, update models.DeadlineUpdate, now time.Time) (*models.DeadlineView, error) {
	return f.updateFn(ctx, stage, update, now)
}

type fakeExportService struct {
	workbook []byte
	snapshot *services.Snapshot
	err      error
}

func (f *fakeExportService) LeaderboardWorkbook(ctx context.Context) ([]byte, error) {
	return f.workbook, f.err
}

func (f *fakeExportService) PublishSnapshot(ctx context.Context, now time.Time) (*services.Snapshot, error) {
	return f.snapshot, f.err
}

type fakeLeaderboardService struct {
	standing []models.LeaderboardEntry
	err      error
}

func (f *fakeLeaderboardService) GetStanding(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return f.standing, f.err
}

type fakePrizePoolService struct {
	pool *models.PrizePool
}

func (f *fakePrizePoolService) Get(ctx context.Context) (*models.PrizePool, error) {
	return f.pool, nil
}

type fakeMatchService struct {
	views     []models.MatchView
	lastStage *string
}

func (f *fakeMatchService) List(ctx context.Context, stage *string) ([]models.MatchView, error) {
	f.lastStage = stage
	return f.views, nil
}

func (f *fakeMatchService) GetByID(ctx context.Context, id int) (*models.MatchView, error) {
	for i := range f.views {
		if f.views[i].ID == id {
			return &f.views[i], nil
		}
	}
	return nil, services.ErrMatchNotFound
}

type fakeUserService struct {
	summary *models.UserSummary
	err     error
}

func (f *fakeUserService) GetSummary(ctx context.Context, userID int) (*models.UserSummary, error) {
	return f.summary, f.err
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(ctx context.Context) error {
	return f.err
}
