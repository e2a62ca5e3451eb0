package lookup

import (
	"sort"
	"time"

	"robo-advisor-lab/internal/domain"
)

// ValueAt returns the value at or before target.
// Returns false when target precedes the first point (no backfill).
func ValueAt(target time.Time, points []domain.ValuePoint) (float64, bool) {
	i := sort.Search(len(points), func(i int) bool {
		return points[i].Date.After(target)
	})
	if i == 0 {
		return 0, false
	}
	return points[i-1].Value, true
}

// Reindex forward-fills points onto dates, dropping leading dates with no
// observation yet.
func Reindex(points []domain.ValuePoint, dates []time.Time) []domain.ValuePoint {
	out := make([]domain.ValuePoint, 0, len(dates))
	for _, d := range dates {
		v, ok := ValueAt(d, points)
		if !ok {
			continue
		}
		out = append(out, domain.ValuePoint{Date: d, Value: v})
	}
	return out
}
