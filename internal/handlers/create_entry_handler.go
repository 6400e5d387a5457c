package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/entries"
	createmodels "io.winapps.starlight/internal/models/create_entry"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/social"
)

type EntryHandler struct {
	entries *entries.Service
	social  *social.Service
	logger  *zap.SugaredLogger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(entrySvc *entries.Service, socialSvc *social.Service, logger *zap.SugaredLogger) *EntryHandler {
	return &EntryHandler{entries: entrySvc, social: socialSvc, logger: logger}
}

func draftFromForm(f createmodels.CreateEntryForm) (entries.Draft, bool) {
	coords, ok := f.Coordinates()
	return entries.Draft{
		Title:       f.Title,
		Date:        f.Date,
		Location:    f.Location,
		Equipment:   f.Equipment,
		Target:      f.Target,
		Description: f.Description,
		Observers:   f.Observers,
		AuthorName:  f.AuthorName,
		ImageURL:    f.ImageURL,
		Coordinates: coords,
		Enhance:     f.Enhance,
	}, ok
}

// bindDraft reads a JSON body, or a multipart form with an optional "image" file
func bindDraft(c *gin.Context) (entries.Draft, *entries.Image, func(), bool) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var d entries.Draft
		if err := c.ShouldBindJSON(&d); err != nil {
			return d, nil, noop, false
		}
		return d, nil, noop, true
	}

	var form createmodels.CreateEntryForm
	if err := c.ShouldBind(&form); err != nil {
		return entries.Draft{}, nil, noop, false
	}
	d, ok := draftFromForm(form)
	if !ok {
		return d, nil, noop, false
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return d, nil, noop, true
	}
	file, err := fh.Open()
	if err != nil {
		return d, nil, noop, false
	}
	img := &entries.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        file,
	}
	return d, img, func() { file.Close() }, true
}

// CreateEntry handles creating a new journal entry
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	viewer, err := session.Require(c)
	if err != nil {
		respondError(h.logger, c, err, "")
		return
	}

	draft, img, closeImage, ok := bindDraft(c)
	defer closeImage()
	if !ok {
		invalidRequest(c)
		return
	}

	entry, err := h.entries.Create(c.Request.Context(), viewer, draft, img)
	if err != nil {
		respondError(h.logger, c, err, "Failed to create entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}
