package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/feed"
	"io.winapps.starlight/internal/live"
	models "io.winapps.starlight/internal/models/account"
	listfeedsmodels "io.winapps.starlight/internal/models/list-feeds"
	"io.winapps.starlight/internal/session"
)

// ProfileWatcher streams a user's profile; store.ProfileStore satisfies it
type ProfileWatcher interface {
	WatchProfile(ctx context.Context, uid string, fn func(*models.UserProfile)) error
}

type FeedHandler struct {
	hub       *live.Hub
	profiles  ProfileWatcher
	composer  *feed.Composer
	logger    *zap.SugaredLogger
	heartbeat time.Duration
}

// NewFeedHandler creates the feed handler. profiles may be nil, in which case
// streams keep the follow list the viewer connected with.
func NewFeedHandler(hub *live.Hub, profiles ProfileWatcher, composer *feed.Composer, logger *zap.SugaredLogger) *FeedHandler {
	return &FeedHandler{hub: hub, profiles: profiles, composer: composer, logger: logger, heartbeat: 25 * time.Second}
}

func (h *FeedHandler) compose(snap live.Snapshot, following []string) listfeedsmodels.ListFeedsResponse {
	entries := h.composer.Compose(snap.Revision, snap.Entries, following)
	if entries == nil {
		entries = []models.Entry{}
	}
	return listfeedsmodels.ListFeedsResponse{Revision: snap.Revision, Entries: entries}
}

func (h *FeedHandler) current(c *gin.Context) (live.Snapshot, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	return h.hub.Current(ctx)
}

// GetFeed returns the latest snapshot ordered for the viewer
func (h *FeedHandler) GetFeed(c *gin.Context) {
	snap, err := h.current(c)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feed is not available yet"})
		return
	}
	c.JSON(http.StatusOK, h.compose(snap, session.FromContext(c).Following()))
}

// watchFollowing delivers the viewer's follow list whenever their profile
// changes. Only the latest list is kept. The channel is nil for anonymous
// viewers, so receiving from it blocks forever.
func (h *FeedHandler) watchFollowing(ctx context.Context, c *gin.Context, viewer *session.Viewer) <-chan []string {
	if viewer == nil || h.profiles == nil {
		return nil
	}
	ch := make(chan []string, 1)
	go func() {
		err := h.profiles.WatchProfile(ctx, viewer.UID, func(p *models.UserProfile) {
			var following []string
			if p != nil {
				following = p.Following
			}
			for {
				select {
				case ch <- following:
					return
				default:
				}
				select {
				case <-ch:
				default:
				}
			}
		})
		if err != nil && ctx.Err() == nil {
			logWithContext(h.logger, c, "warn", "Profile listener stopped", "error", err)
		}
	}()
	return ch
}

// StreamFeed pushes the composed feed as a server-sent event on every
// snapshot, and again when the viewer follows or unfollows someone.
func (h *FeedHandler) StreamFeed(c *gin.Context) {
	ctx, stop := context.WithCancel(c.Request.Context())
	defer stop()

	updates, cancel := h.hub.Subscribe()
	defer cancel()

	viewer := session.FromContext(c)
	following := viewer.Following()
	follows := h.watchFollowing(ctx, c, viewer)

	var (
		last    live.Snapshot
		hasLast bool
	)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-updates:
			if !ok {
				return false
			}
			last, hasLast = snap, true
			c.SSEvent("feed", h.compose(snap, following))
			return true
		case f := <-follows:
			if sameIDs(f, following) {
				return true
			}
			following = f
			if hasLast {
				c.SSEvent("feed", h.compose(last, following))
			}
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"ts": time.Now().UnixMilli()})
			return true
		}
	})
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MapMarkers returns the entries that can be placed on the map
func (h *FeedHandler) MapMarkers(c *gin.Context) {
	snap, err := h.current(c)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feed is not available yet"})
		return
	}
	c.JSON(http.StatusOK, listfeedsmodels.MapMarkersResponse{Markers: feed.MapMarkers(snap.Entries)})
}
