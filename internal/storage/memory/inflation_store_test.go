package memory

import (
	"context"
	"errors"
	"testing"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/storage"
)

func TestInflationStore_InsertBulkAndRange(t *testing.T) {
	store := NewInflationStore()
	ctx := context.Background()

	points := []*domain.InflationPoint{
		{Date: date(2024, 3, 1), RatePct: 5.3},
		{Date: date(2024, 1, 1), RatePct: 5.1},
		{Date: date(2024, 2, 1), RatePct: 5.2},
	}
	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDateRange(ctx, date(2024, 1, 15), date(2024, 3, 1))
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(got) != 2 || got[0].RatePct != 5.2 || got[1].RatePct != 5.3 {
		t.Errorf("Expected [5.2 5.3], got %+v", got)
	}

	err = store.InsertBulk(ctx, []*domain.InflationPoint{{Date: date(2024, 1, 1), RatePct: 9}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
