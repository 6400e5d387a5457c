package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"io.winapps.starlight/internal/ai"
	"io.winapps.starlight/internal/apperr"
	"io.winapps.starlight/internal/calendar"
	"io.winapps.starlight/internal/entries"
	"io.winapps.starlight/internal/feed"
	"io.winapps.starlight/internal/live"
	"io.winapps.starlight/internal/logger"
	"io.winapps.starlight/internal/metrics"
	"io.winapps.starlight/internal/middleware"
	models "io.winapps.starlight/internal/models/account"
	listfeedsmodels "io.winapps.starlight/internal/models/list-feeds"
	loginmodels "io.winapps.starlight/internal/models/login"
	"io.winapps.starlight/internal/profile"
	"io.winapps.starlight/internal/security"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/social"
	"io.winapps.starlight/internal/store/memstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenAuth treats the bearer token as the uid and loads the stored profile
type tokenAuth struct {
	st *memstore.Store
}

func (a tokenAuth) Authenticate(ctx context.Context, token string) (*session.Viewer, error) {
	if token == "invalid" {
		return nil, apperr.AuthRequired("bad token")
	}
	v := &session.Viewer{UID: token, DisplayName: token + "-name"}
	if p, err := a.st.GetProfile(ctx, token); err == nil {
		v.Profile = p
	}
	return v, nil
}

type fakeSessions struct {
	signedOut []string
}

func (f *fakeSessions) SignIn(ctx context.Context, token string) (*session.Viewer, error) {
	if token == "invalid" {
		return nil, apperr.AuthRequired("bad token")
	}
	return &session.Viewer{UID: token, Email: token + "@example.com"}, nil
}

func (f *fakeSessions) SignOut(ctx context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

type testServer struct {
	router   *gin.Engine
	st       *memstore.Store
	sessions *fakeSessions
	hub      *live.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Nop()
	st := memstore.New()
	san := security.NewSanitizer()

	hub := live.NewHub(st, log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		hub.Close()
	})
	go hub.Run(ctx)

	// seed only after the listener's initial snapshot has been published
	readyCtx, readyCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readyCancel()
	if _, err := hub.Current(readyCtx); err != nil {
		t.Fatalf("hub never published: %v", err)
	}

	socialSvc := social.NewService(st, st, nil, san, metrics.Nop{}, log)
	sessions := &fakeSessions{}
	auth := tokenAuth{st: st}

	routes := Routes{
		Auth:         NewAuthHandler(sessions, log),
		Entries:      NewEntryHandler(entries.NewService(st, nil, nil, san, log), socialSvc, log),
		Users:        NewUsersHandler(profile.NewService(st, san), socialSvc, log),
		Feed:         NewFeedHandler(hub, st, feed.NewComposer(time.Minute, nil), log),
		AI:           NewAIHandler(ai.NewService(nil, "en", nil, log), log),
		Calendar:     NewCalendarHandler(calendar.NewService(st, san, log), log),
		RequireAuth:  middleware.AuthMiddleware(auth),
		OptionalAuth: middleware.OptionalAuth(auth),
	}
	r := gin.New()
	routes.Register(r.Group("/api/v1"))
	return &testServer{router: r, st: st, sessions: sessions, hub: hub}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestSession(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/session", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sign in: %d %s", w.Code, w.Body.String())
	}
	var resp loginmodels.LoginResponse
	decode(t, w, &resp)
	if resp.UID != "u1" || resp.Email != "u1@example.com" {
		t.Fatalf("resp = %+v", resp)
	}

	if w := s.do(http.MethodPost, "/api/v1/auth/session", "invalid", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token: %d", w.Code)
	}

	if w := s.do(http.MethodDelete, "/api/v1/auth/session", "u1", nil); w.Code != http.StatusOK {
		t.Fatalf("sign out: %d", w.Code)
	}
	if len(s.sessions.signedOut) != 1 || s.sessions.signedOut[0] != "u1" {
		t.Fatalf("signed out = %v", s.sessions.signedOut)
	}
}

func TestEntryLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/entries", "u1", map[string]interface{}{
		"title": "Saturn", "description": "Rings visible", "target": "Saturn",
		"coordinates": map[string]float64{"lat": 37.5, "lng": 127.0},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created models.Entry
	decode(t, w, &created)

	if w := s.do(http.MethodPost, "/api/v1/entries", "", map[string]string{"title": "x", "description": "y"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: %d", w.Code)
	}
	if w := s.do(http.MethodPost, "/api/v1/entries", "u1", map[string]string{"title": "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing description: %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/v1/entries/"+created.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}

	if w := s.do(http.MethodPut, "/api/v1/entries/"+created.ID, "u2", map[string]string{"title": "x", "description": "y"}); w.Code != http.StatusForbidden {
		t.Fatalf("update by other: %d", w.Code)
	}
	if w := s.do(http.MethodPut, "/api/v1/entries/"+created.ID, "u1", map[string]string{"title": "Saturn II", "description": "Cassini division"}); w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	if w := s.do(http.MethodDelete, "/api/v1/entries/"+created.ID, "u1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete: %d", w.Code)
	}
	if w := s.do(http.MethodDelete, "/api/v1/entries/"+created.ID+"?confirm=true", "u1", nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/v1/entries/"+created.ID, "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", w.Code)
	}
}

func TestCreateEntryMultipart(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "Moon")
	mw.WriteField("description", "Craters")
	mw.WriteField("lat", "33.5")
	mw.WriteField("lng", "126.5")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer u1")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var e models.Entry
	decode(t, w, &e)
	if e.Coordinates == nil || e.Coordinates.Lat != 33.5 {
		t.Fatalf("coordinates = %+v", e.Coordinates)
	}
}

func TestLikeAndComments(t *testing.T) {
	s := newTestServer(t)
	s.st.PutEntry(models.Entry{ID: "e1", UserID: "u1", Title: "Orion"})

	w := s.do(http.MethodPost, "/api/v1/entries/e1/like", "u2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like: %d", w.Code)
	}
	var like struct {
		Liked bool `json:"liked"`
	}
	decode(t, w, &like)
	if !like.Liked {
		t.Fatal("expected liked")
	}
	w = s.do(http.MethodPost, "/api/v1/entries/e1/like", "u2", nil)
	decode(t, w, &like)
	if like.Liked {
		t.Fatal("expected unliked")
	}

	if w := s.do(http.MethodPost, "/api/v1/entries/e1/comments", "u2", map[string]string{"text": "   "}); w.Code != http.StatusBadRequest {
		t.Fatalf("blank comment: %d", w.Code)
	}
	w = s.do(http.MethodPost, "/api/v1/entries/e1/comments", "u2", map[string]string{"text": "Beautiful"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment: %d %s", w.Code, w.Body.String())
	}
	var c models.Comment
	decode(t, w, &c)

	path := "/api/v1/entries/e1/comments/" + c.ID
	if w := s.do(http.MethodPut, path, "u1", map[string]string{"text": "hijack"}); w.Code != http.StatusForbidden {
		t.Fatalf("edit by other: %d", w.Code)
	}
	if w := s.do(http.MethodPut, path, "u2", map[string]string{"text": "Stunning"}); w.Code != http.StatusOK {
		t.Fatalf("edit: %d", w.Code)
	}
	if w := s.do(http.MethodDelete, path, "u2", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete: %d", w.Code)
	}
	if w := s.do(http.MethodDelete, path+"?confirm=true", "u2", nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	e, _ := s.st.Entry("e1")
	if len(e.Comments) != 0 || len(e.Likes) != 0 {
		t.Fatalf("entry = %+v", e)
	}
}

func TestFollowAndProfile(t *testing.T) {
	s := newTestServer(t)
	s.st.PutProfile(models.UserProfile{UID: "u1", Email: "u1@example.com", DisplayName: "One"})
	s.st.PutProfile(models.UserProfile{UID: "u2", Email: "u2@example.com", DisplayName: "Two"})

	if w := s.do(http.MethodPost, "/api/v1/users/u2/follow", "u1", nil); w.Code != http.StatusOK {
		t.Fatalf("follow: %d %s", w.Code, w.Body.String())
	}
	if w := s.do(http.MethodPost, "/api/v1/users/u1/follow", "u1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("self follow: %d", w.Code)
	}

	w := s.do(http.MethodGet, "/api/v1/users/u2", "", nil)
	var pub models.UserProfile
	decode(t, w, &pub)
	if pub.Email != "" || len(pub.Followers) != 1 || pub.Followers[0] != "u1" {
		t.Fatalf("public profile = %+v", pub)
	}

	w = s.do(http.MethodPut, "/api/v1/users/me", "u1", map[string]string{"displayName": "Uno", "equipment": "8in Dob", "region": "Seoul"})
	if w.Code != http.StatusOK {
		t.Fatalf("update me: %d %s", w.Code, w.Body.String())
	}
	w = s.do(http.MethodGet, "/api/v1/users/me", "u1", nil)
	var me struct {
		Profile       models.UserProfile    `json:"profile"`
		EntryDefaults profile.EntryDefaults `json:"entryDefaults"`
	}
	decode(t, w, &me)
	if me.Profile.Email != "u1@example.com" || me.EntryDefaults.Equipment != "8in Dob" || me.EntryDefaults.Location != "Seoul" {
		t.Fatalf("me = %+v", me)
	}

	if w := s.do(http.MethodDelete, "/api/v1/users/u2/follow", "u1", nil); w.Code != http.StatusOK {
		t.Fatalf("unfollow: %d", w.Code)
	}
	p2, _ := s.st.Profile("u2")
	if len(p2.Followers) != 0 {
		t.Fatalf("followers = %v", p2.Followers)
	}
}

func TestFeedOrdersFollowedFirst(t *testing.T) {
	s := newTestServer(t)
	s.st.PutProfile(models.UserProfile{UID: "viewer", Following: []string{"A"}})
	s.st.PutEntry(models.Entry{ID: "b200", UserID: "B", CreatedAt: 200})
	s.st.PutEntry(models.Entry{ID: "a300", UserID: "A", CreatedAt: 300})
	s.st.PutEntry(models.Entry{ID: "a100", UserID: "A", CreatedAt: 100})

	var ids []string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var resp listfeedsmodels.ListFeedsResponse
		decode(t, s.do(http.MethodGet, "/api/v1/feed", "viewer", nil), &resp)
		ids = ids[:0]
		for _, e := range resp.Entries {
			ids = append(ids, e.ID)
		}
		if len(ids) == 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	want := []string{"a300", "a100", "b200"}
	for i := range want {
		if i >= len(ids) || ids[i] != want[i] {
			t.Fatalf("viewer feed = %v, want %v", ids, want)
		}
	}

	var anon listfeedsmodels.ListFeedsResponse
	decode(t, s.do(http.MethodGet, "/api/v1/feed", "", nil), &anon)
	if len(anon.Entries) != 3 || anon.Entries[0].ID != "a300" || anon.Entries[1].ID != "b200" {
		t.Fatalf("anonymous feed = %+v", anon.Entries)
	}
}

// readFeedEvents decodes the "feed" events of a server-sent event stream
func readFeedEvents(body io.Reader) <-chan listfeedsmodels.ListFeedsResponse {
	out := make(chan listfeedsmodels.ListFeedsResponse, 16)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(body)
		sc.Buffer(make([]byte, 64*1024), 1<<20)
		event := ""
		for sc.Scan() {
			line := sc.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:") && event == "feed":
				var resp listfeedsmodels.ListFeedsResponse
				if json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &resp) == nil {
					out <- resp
				}
			}
		}
	}()
	return out
}

func TestStreamFeedReordersOnFollow(t *testing.T) {
	s := newTestServer(t)
	s.st.PutProfile(models.UserProfile{UID: "viewer", Following: []string{}})
	s.st.PutProfile(models.UserProfile{UID: "A"})
	s.st.PutEntry(models.Entry{ID: "a100", UserID: "A", CreatedAt: 100})
	s.st.PutEntry(models.Entry{ID: "b200", UserID: "B", CreatedAt: 200})

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/feed/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer viewer")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	events := readFeedEvents(resp.Body)

	waitFirst := func(want string) {
		t.Helper()
		timeout := time.After(3 * time.Second)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					t.Fatalf("stream ended while waiting for %s first", want)
				}
				if len(ev.Entries) == 2 && ev.Entries[0].ID == want {
					return
				}
			case <-timeout:
				t.Fatalf("no feed event with %s first", want)
			}
		}
	}

	waitFirst("b200")
	if err := s.st.AddFollowing(context.Background(), "viewer", "A"); err != nil {
		t.Fatal(err)
	}
	waitFirst("a100")
}

func TestCalendarRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/calendar/events", "u1", map[string]string{"date": "2025-12-14", "title": "Club night"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var ev models.CalendarEvent
	decode(t, w, &ev)

	w = s.do(http.MethodGet, "/api/v1/calendar?month=2025-12", "", nil)
	var list struct {
		Events []models.CalendarEvent `json:"events"`
	}
	decode(t, w, &list)
	if len(list.Events) != 2 || list.Events[1].ID != ev.ID {
		t.Fatalf("events = %+v", list.Events)
	}

	if w := s.do(http.MethodDelete, "/api/v1/calendar/events/"+ev.ID+"?confirm=true", "u2", nil); w.Code != http.StatusForbidden {
		t.Fatalf("delete by other: %d", w.Code)
	}
	if w := s.do(http.MethodDelete, "/api/v1/calendar/events/"+ev.ID+"?confirm=true", "u1", nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/v1/calendar?month=december", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad month: %d", w.Code)
	}
}

func TestAIFallbacks(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/ai/enhance", "u1", map[string]string{"text": "saw jupiter", "target": "Jupiter"})
	var resp struct {
		Text     string `json:"text"`
		Enhanced bool   `json:"enhanced"`
	}
	decode(t, w, &resp)
	if resp.Text != "saw jupiter" || resp.Enhanced {
		t.Fatalf("resp = %+v", resp)
	}

	if w := s.do(http.MethodPost, "/api/v1/ai/location-insight", "u1", map[string]string{"location": "Seoul"}); w.Code != http.StatusNoContent {
		t.Fatalf("insight without model: %d", w.Code)
	}
	var status struct {
		Enabled bool `json:"enabled"`
	}
	w = s.do(http.MethodGet, "/api/v1/ai/status", "", nil)
	decode(t, w, &status)
	if w.Code != http.StatusOK || status.Enabled {
		t.Fatalf("status: %d %+v", w.Code, status)
	}

	if w := s.do(http.MethodPost, "/api/v1/ai/enhance", "", map[string]string{"text": "x"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", w.Code)
	}
}
