package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/feed"
)

func ids(records []model.RawProviderRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ProviderID)
	}
	return out
}

func TestSelect(t *testing.T) {
	records := []model.RawProviderRecord{
		{ProviderID: "a", City: "Minneapolis", Capacity: model.IntPtr(10)},
		{ProviderID: "b", City: "St. Paul", Capacity: model.IntPtr(99)},
		{ProviderID: "c", City: " MINNEAPOLIS ", Capacity: model.IntPtr(40)},
		{ProviderID: "d", City: "minneapolis"},
		{ProviderID: "e", City: "Minneapolis", Capacity: model.IntPtr(40)},
	}

	tests := []struct {
		name string
		sel  feed.Selection
		want []string
	}{
		{name: "no selection keeps feed order", sel: feed.Selection{}, want: []string{"a", "b", "c", "d", "e"}},
		{name: "city filter", sel: feed.Selection{City: "Minneapolis"}, want: []string{"a", "c", "d", "e"}},
		{name: "top by capacity, ties stable", sel: feed.Selection{City: "minneapolis", Limit: 3}, want: []string{"c", "e", "a"}},
		{name: "missing capacity sorts last", sel: feed.Selection{City: "minneapolis", Limit: 10}, want: []string{"c", "e", "a", "d"}},
		{name: "limit across cities", sel: feed.Selection{Limit: 1}, want: []string{"b"}},
		{name: "unknown city", sel: feed.Selection{City: "Duluth"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(feed.Select(records, tt.sel)))
		})
	}

	assert.Equal(t, "a", records[0].ProviderID, "input must not be reordered")
}
