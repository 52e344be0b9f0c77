package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/prediction-pool/models"
	"github.com/Dosada05/prediction-pool/storage"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	leaderboardSheetName = "Leaderboard"
	snapshotKeyPrefix    = "leaderboard-snapshots/"
)

var leaderboardHeader = []interface{}{"Rank", "Participant", "Points", "Exact scores", "Correct outcomes"}

type Snapshot struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	Entries   int       `json:"entries"`
}

type ExportService interface {
	LeaderboardWorkbook(ctx context.Context) ([]byte, error)
	PublishSnapshot(ctx context.Context, now time.Time) (*Snapshot, error)
}

type exportService struct {
	leaderboard LeaderboardService
	uploader    storage.FileUploader
	logger      *slog.Logger
}

// NewExportService builds the export service. uploader may be nil, in which
// case snapshots are unavailable and only downloads work.
func NewExportService(leaderboard LeaderboardService, uploader storage.FileUploader, logger *slog.Logger) ExportService {
	return &exportService{
		leaderboard: leaderboard,
		uploader:    uploader,
		logger:      logger,
	}
}

func (s *exportService) LeaderboardWorkbook(ctx context.Context) ([]byte, error) {
	standing, err := s.leaderboard.GetStanding(ctx)
	if err != nil {
		return nil, err
	}
	return buildLeaderboardWorkbook(standing)
}

// PublishSnapshot uploads the current standing as an XLSX object.
func (s *exportService) PublishSnapshot(ctx context.Context, now time.Time) (*Snapshot, error) {
	if s.uploader == nil {
		return nil, ErrExportUnavailable
	}

	standing, err := s.leaderboard.GetStanding(ctx)
	if err != nil {
		return nil, err
	}
	data, err := buildLeaderboardWorkbook(standing)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s-%s.xlsx", snapshotKeyPrefix, now.UTC().Format("20060102T150405Z"), uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, xlsxContentType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to upload leaderboard snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "Leaderboard snapshot published",
		slog.String("key", result.Key), slog.Int("entries", len(standing)))
	return &Snapshot{
		Key:       result.Key,
		URL:       result.Location,
		CreatedAt: now.UTC(),
		Entries:   len(standing),
	}, nil
}

func buildLeaderboardWorkbook(standing []models.LeaderboardEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leaderboardSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(leaderboardSheetName, "A1", &leaderboardHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, entry := range standing {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{entry.Rank, entry.DisplayName, entry.TotalPoints, entry.ExactCount, entry.CorrectCount}
		if err := f.SetSheetRow(leaderboardSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
