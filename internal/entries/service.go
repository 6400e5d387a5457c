// Package entries implements the journal editor: creating, editing and
// deleting a viewer's own observation entries.
package entries

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/security"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/store"
)

// DefaultAuthorName is used when the author has no display name
const DefaultAuthorName = "익명의 천문학자"

// ImageUploader stores an image and returns its download URL
type ImageUploader interface {
	UploadImage(ctx context.Context, uid, filename, contentType string, r io.Reader) (string, error)
}

// Enhancer rewrites a description; it returns the input when it cannot
type Enhancer interface {
	EnhanceEntry(ctx context.Context, text, target string) string
}

// Draft is what the editor submits
type Draft struct {
	Title       string              `json:"title"`
	Date        string              `json:"date"`
	Location    string              `json:"location"`
	Equipment   string              `json:"equipment"`
	Target      string              `json:"target"`
	Description string              `json:"description"`
	Observers   string              `json:"observers"`
	AuthorName  string              `json:"authorName"`
	ImageURL    string              `json:"imageUrl"`
	Coordinates *models.Coordinates `json:"coordinates"`
	Enhance     bool                `json:"enhance"`
}

// Image is an optional file attached to a draft
type Image struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type Service struct {
	entries   store.EntryStore
	uploader  ImageUploader
	enhancer  Enhancer
	sanitizer *security.Sanitizer
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewService creates the editor service. uploader and enhancer may be nil.
func NewService(entries store.EntryStore, uploader ImageUploader, enhancer Enhancer, sanitizer *security.Sanitizer, logger *zap.SugaredLogger) *Service {
	return &Service{
		entries:   entries,
		uploader:  uploader,
		enhancer:  enhancer,
		sanitizer: sanitizer,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns one entry for the detail view
func (s *Service) Get(ctx context.Context, id string) (*models.Entry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("Entry ID is required")
	}
	return s.entries.GetEntry(ctx, id)
}

// prepare cleans the draft, uploads the image and runs enhancement. It
// returns the fields to store.
func (s *Service) prepare(ctx context.Context, viewer *session.Viewer, d Draft, img *Image) (models.EntryFields, error) {
	f := models.EntryFields{
		Title:       s.sanitizer.Text(d.Title),
		Date:        strings.TrimSpace(d.Date),
		Location:    s.sanitizer.Text(d.Location),
		Equipment:   s.sanitizer.Text(d.Equipment),
		Target:      s.sanitizer.Text(d.Target),
		Description: s.sanitizer.Text(d.Description),
		Observers:   s.sanitizer.Text(d.Observers),
		AuthorName:  s.sanitizer.Text(d.AuthorName),
		ImageURL:    s.sanitizer.URL(d.ImageURL),
		Coordinates: d.Coordinates,
	}
	if f.Title == "" || f.Description == "" {
		return f, apperr.Validation("Title and description are required")
	}
	if f.Date == "" {
		f.Date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		return f, apperr.Validation("date must be YYYY-MM-DD")
	}
	if c := f.Coordinates; c != nil && (c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180) {
		return f, apperr.Validation("Coordinates out of range")
	}
	if f.AuthorName == "" {
		f.AuthorName = viewer.Name(DefaultAuthorName)
	}

	if img != nil && img.Body != nil {
		if s.uploader == nil {
			return f, apperr.Validation("Image uploads are not available")
		}
		url, err := s.uploader.UploadImage(ctx, viewer.UID, img.Filename, img.ContentType, img.Body)
		if err != nil {
			return f, err
		}
		f.ImageURL = url
	}

	if d.Enhance && s.enhancer != nil {
		f.Description = s.enhancer.EnhanceEntry(ctx, f.Description, f.Target)
	}
	return f, nil
}

// Create stores a new entry owned by the viewer
func (s *Service) Create(ctx context.Context, viewer *session.Viewer, d Draft, img *Image) (*models.Entry, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("Sign in to write entries")
	}
	f, err := s.prepare(ctx, viewer, d, img)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.CreateEntry(ctx, models.Entry{
		UserID:      viewer.UID,
		CreatedAt:   s.now().UnixMilli(),
		Title:       f.Title,
		Date:        f.Date,
		Location:    f.Location,
		Equipment:   f.Equipment,
		Target:      f.Target,
		Description: f.Description,
		Observers:   f.Observers,
		AuthorName:  f.AuthorName,
		ImageURL:    f.ImageURL,
		Coordinates: f.Coordinates,
		Likes:       []string{},
		Comments:    []models.Comment{},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("entry created", "entry_id", entry.ID, "user_uid", viewer.UID)
	return entry, nil
}

func (s *Service) owned(ctx context.Context, id string, viewer *session.Viewer) (*models.Entry, error) {
	if viewer == nil {
		return nil, apperr.AuthRequired("User not authenticated")
	}
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != viewer.UID {
		return nil, apperr.PermissionDenied("Only the author can change this entry")
	}
	return entry, nil
}

// Update replaces the editable fields of the viewer's own entry. Likes,
// comments, owner and creation time are never touched.
func (s *Service) Update(ctx context.Context, id string, viewer *session.Viewer, d Draft, img *Image) (*models.Entry, error) {
	entry, err := s.owned(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	f, err := s.prepare(ctx, viewer, d, img)
	if err != nil {
		return nil, err
	}
	if err := s.entries.UpdateEntry(ctx, id, f); err != nil {
		return nil, err
	}

	entry.Title, entry.Date, entry.Location = f.Title, f.Date, f.Location
	entry.Equipment, entry.Target, entry.Description = f.Equipment, f.Target, f.Description
	entry.Observers, entry.AuthorName = f.Observers, f.AuthorName
	entry.ImageURL, entry.Coordinates = f.ImageURL, f.Coordinates
	return entry, nil
}

// Delete removes the viewer's own entry. confirmed must be true.
func (s *Service) Delete(ctx context.Context, id string, viewer *session.Viewer, confirmed bool) error {
	if !confirmed {
		return apperr.Validation("Deletion must be confirmed")
	}
	if _, err := s.owned(ctx, id, viewer); err != nil {
		return err
	}
	if err := s.entries.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("entry deleted", "entry_id", id, "user_uid", viewer.UID)
	return nil
}
