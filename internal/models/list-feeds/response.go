package models

import (
	"io.winapps.starlight/internal/feed"
	accountmodels "io.winapps.starlight/internal/models/account"
)

type ListFeedsResponse struct {
	Revision uint64                `json:"revision"`
	Entries  []accountmodels.Entry `json:"entries"`
}

type MapMarkersResponse struct {
	Markers []feed.Marker `json:"markers"`
}
