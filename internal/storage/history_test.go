package storage

import (
	"path/filepath"
	"testing"

	"github.com/hazemk/borsa/internal/common"
	"github.com/hazemk/borsa/internal/models"
)

func newTestHistory(t *testing.T) *RecommendationStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recommendation-history.json")
	return NewRecommendationStore(common.NewSilentLogger(), path)
}

func TestHistoryAppendAssignsID(t *testing.T) {
	store := newTestHistory(t)

	rec, err := store.Append(models.Recommendation{Amount: 5000})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected assigned ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected assigned timestamp")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := newTestHistory(t)

	first, _ := store.Append(models.Recommendation{Amount: 1000})
	second, _ := store.Append(models.Recommendation{Amount: 2000})
	third, _ := store.Append(models.Recommendation{Amount: 3000})

	records, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != third.ID || records[1].ID != second.ID || records[2].ID != first.ID {
		t.Errorf("expected newest-first ordering, got %v %v %v",
			records[0].Amount, records[1].Amount, records[2].Amount)
	}
}

func TestHistoryListEmptyFile(t *testing.T) {
	store := newTestHistory(t)

	records, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if records == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestHistoryDelete(t *testing.T) {
	store := newTestHistory(t)

	keep, _ := store.Append(models.Recommendation{Amount: 1000})
	drop, _ := store.Append(models.Recommendation{Amount: 2000})

	found, err := store.Delete(drop.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !found {
		t.Fatal("expected delete to find the record")
	}

	records, _ := store.List()
	if len(records) != 1 || records[0].ID != keep.ID {
		t.Errorf("expected only %s to survive, got %+v", keep.ID, records)
	}
}

func TestHistoryDeleteMissing(t *testing.T) {
	store := newTestHistory(t)

	found, err := store.Delete("no-such-id")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if found {
		t.Fatal("expected false for unknown id")
	}
}

func TestHistorySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommendation-history.json")
	logger := common.NewSilentLogger()

	store := NewRecommendationStore(logger, path)
	rec, err := store.Append(models.Recommendation{
		Amount: 5000,
		Result: models.DeployCapitalResult{
			Amount:  5000,
			Summary: "Split across underweights",
			Allocations: []models.Allocation{
				{Symbol: "COMI", Amount: 2500},
				{Symbol: "HRHO", Amount: 2500},
			},
		},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	reopened := NewRecommendationStore(logger, path)
	records, err := reopened.List()
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(records) != 1 || records[0].ID != rec.ID {
		t.Fatalf("expected persisted record, got %+v", records)
	}
	if len(records[0].Result.Allocations) != 2 {
		t.Errorf("expected allocations to persist, got %+v", records[0].Result)
	}
}
