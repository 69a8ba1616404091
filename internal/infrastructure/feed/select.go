package feed

import (
	"sort"
	"strings"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
)

// Selection narrows a feed before ingestion.
type Selection struct {
	// City keeps only records in this city, compared case-insensitively.
	// Empty keeps every city.
	City string
	// Limit keeps the Limit largest providers by capacity. Zero keeps all.
	Limit int
}

// Select applies s to records and returns a new slice. With a limit, records
// are ordered by capacity descending, missing capacity last, ties keeping
// feed order. Without one, feed order is preserved.
func Select(records []model.RawProviderRecord, s Selection) []model.RawProviderRecord {
	out := make([]model.RawProviderRecord, 0, len(records))
	for _, r := range records {
		if s.City != "" && !strings.EqualFold(strings.TrimSpace(r.City), strings.TrimSpace(s.City)) {
			continue
		}
		out = append(out, r)
	}

	if s.Limit <= 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return capacityOf(out[i]) > capacityOf(out[j])
	})
	if len(out) > s.Limit {
		out = out[:s.Limit]
	}
	return out
}

func capacityOf(r model.RawProviderRecord) int {
	if r.Capacity == nil {
		return -1
	}
	return *r.Capacity
}
