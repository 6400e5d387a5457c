// Package feed derives the displayed feed ordering from the live entry
// collection and the viewer's follow list.
package feed

import (
	"sort"

	models "io.winapps.starlight/internal/models/account"
)

// ComposeFeed ranks entries by authors the viewer follows first, then by
// createdAt descending. entries is expected to arrive newest first.
//
// With no follow list the input is returned as is. Otherwise the result is a
// stable permutation: entries with equal (followed, createdAt) keep their input order.
func ComposeFeed(entries []models.Entry, following []string) []models.Entry {
	if len(following) == 0 {
		return entries
	}
	followed := models.IDSet(following)

	out := make([]models.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		_, fi := followed[out[i].UserID]
		_, fj := followed[out[j].UserID]
		if fi != fj {
			return fi
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Marker is an entry placed on the map
type Marker struct {
	EntryID    string  `json:"entryId"`
	Title      string  `json:"title"`
	Target     string  `json:"target"`
	Date       string  `json:"date"`
	AuthorName string  `json:"authorName"`
	ImageURL   string  `json:"imageUrl,omitempty"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// MapMarkers returns a marker for every entry that carries coordinates, in input order
func MapMarkers(entries []models.Entry) []Marker {
	markers := make([]Marker, 0, len(entries))
	for _, e := range entries {
		if e.Coordinates == nil {
			continue
		}
		markers = append(markers, Marker{
			EntryID:    e.ID,
			Title:      e.Title,
			Target:     e.Target,
			Date:       e.Date,
			AuthorName: e.AuthorName,
			ImageURL:   e.ImageURL,
			Lat:        e.Coordinates.Lat,
			Lng:        e.Coordinates.Lng,
		})
	}
	return markers
}
