package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourscan/internal/models"
)

type recordingLegacyWriter struct {
	got []models.LegacyItem
	err error
}

func (w *recordingLegacyWriter) ImportLegacyContent(_ context.Context, items []models.LegacyItem) (int, error) {
	w.got = items
	if w.err != nil {
		return 0, w.err
	}
	return len(items), nil
}

func TestImportLegacyContent_SkipsTitlelessAndTrims(t *testing.T) {
	writer := &recordingLegacyWriter{}
	svc := NewImportService(writer, nil)

	summary, err := svc.ImportLegacyContent(context.Background(), []models.LegacyItem{
		{Title: "  Old Lisbon Guide  ", Destination: " Lisbon "},
		{Title: "   "},
		{Title: "Hidden Beaches", Destination: "Algarve"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, []string{"Algarve", "Lisbon"}, summary.Destinations)

	require.Len(t, writer.got, 2)
	assert.Equal(t, "Old Lisbon Guide", writer.got[0].Title)
	assert.Equal(t, "Lisbon", writer.got[0].Destination)
}

func TestImportLegacyContent_RejectsOversizedBatch(t *testing.T) {
	svc := NewImportService(&recordingLegacyWriter{}, nil)

	items := make([]models.LegacyItem, maxImportItems+1)
	_, err := svc.ImportLegacyContent(context.Background(), items)
	assert.ErrorIs(t, err, ErrImportTooLarge)
}

func TestImportLegacyContent_StorageErrorPropagates(t *testing.T) {
	writer := &recordingLegacyWriter{err: errors.New("deadlock detected")}
	svc := NewImportService(writer, nil)

	_, err := svc.ImportLegacyContent(context.Background(), []models.LegacyItem{{Title: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock detected")
}

func TestImportLegacyContent_EmptyBatch(t *testing.T) {
	svc := NewImportService(&recordingLegacyWriter{}, nil)

	summary, err := svc.ImportLegacyContent(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Empty(t, summary.Destinations)
}
