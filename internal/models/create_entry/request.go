package models

import (
	"strconv"

	accountmodels "io.winapps.starlight/internal/models/account"
)

// CreateEntryForm is the multipart variant of an entry draft. The optional
// image travels as the "image" file part.
type CreateEntryForm struct {
	Title       string `form:"title"`
	Date        string `form:"date"`
	Location    string `form:"location"`
	Equipment   string `form:"equipment"`
	Target      string `form:"target"`
	Description string `form:"description"`
	Observers   string `form:"observers"`
	AuthorName  string `form:"authorName"`
	ImageURL    string `form:"imageUrl"`
	Lat         string `form:"lat"`
	Lng         string `form:"lng"`
	Enhance     bool   `form:"enhance"`
}

// Coordinates parses lat/lng. Both empty means no coordinates; ok is false
// when either value is malformed.
func (f CreateEntryForm) Coordinates() (coords *accountmodels.Coordinates, ok bool) {
	if f.Lat == "" && f.Lng == "" {
		return nil, true
	}
	lat, err := strconv.ParseFloat(f.Lat, 64)
	if err != nil {
		return nil, false
	}
	lng, err := strconv.ParseFloat(f.Lng, 64)
	if err != nil {
		return nil, false
	}
	return &accountmodels.Coordinates{Lat: lat, Lng: lng}, true
}
