package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"tourscan/internal/models"
)

// maxImportItems bounds one import request; larger archives are split by the
// caller.
const maxImportItems = 1000

// ErrImportTooLarge rejects batches over maxImportItems.
var ErrImportTooLarge = errors.New("import batch too large")

// LegacyWriter is the write side of the legacy content store.
type LegacyWriter interface {
	ImportLegacyContent(ctx context.Context, items []models.LegacyItem) (int, error)
}

// ImportSummary reports what an import accepted and what it dropped.
type ImportSummary struct {
	Imported     int      `json:"imported"`
	Skipped      int      `json:"skipped"`
	Destinations []string `json:"destinations"`
}

// ImportService loads legacy editorial content into the discovery fallback
// pool. Items without a title are skipped rather than failing the batch.
type ImportService struct {
	store  LegacyWriter
	logger *zap.Logger
}

func NewImportService(store LegacyWriter, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{store: store, logger: logger}
}

// ImportLegacyContent cleans and persists a batch of legacy items.
func (s *ImportService) ImportLegacyContent(ctx context.Context, items []models.LegacyItem) (*ImportSummary, error) {
	if len(items) > maxImportItems {
		return nil, fmt.Errorf("%w: %d items (max %d)", ErrImportTooLarge, len(items), maxImportItems)
	}

	accepted := make([]models.LegacyItem, 0, len(items))
	seenDest := make(map[string]bool)
	skipped := 0

	for _, item := range items {
		item.Title = strings.TrimSpace(item.Title)
		item.Destination = strings.TrimSpace(item.Destination)
		item.Description = strings.TrimSpace(item.Description)
		if item.Title == "" {
			skipped++
			continue
		}
		if item.Destination != "" && !seenDest[item.Destination] {
			seenDest[item.Destination] = true
		}
		accepted = append(accepted, item)
	}

	imported, err := s.store.ImportLegacyContent(ctx, accepted)
	if err != nil {
		return nil, fmt.Errorf("importing legacy content: %w", err)
	}

	destinations := make([]string, 0, len(seenDest))
	for dest := range seenDest {
		destinations = append(destinations, dest)
	}
	sort.Strings(destinations)

	s.logger.Info("legacy content imported",
		zap.Int("imported", imported), zap.Int("skipped", skipped))

	return &ImportSummary{
		Imported:     imported,
		Skipped:      skipped,
		Destinations: destinations,
	}, nil
}
