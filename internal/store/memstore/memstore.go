// Package memstore is an in-memory document store with the same set and
// rewrite semantics as the Firestore implementation. Tests use it in place of
// a live project.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/store"
)

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu       sync.Mutex
	seq      int
	entries  map[string]models.Entry
	profiles map[string]models.UserProfile
	events   map[string]models.CalendarEvent

	watchers map[int]func([]models.Entry)
	nextW    int

	profileWatchers map[int]profileWatcher

	// Fail hooks, keyed by method name, let tests inject store rejections.
	Fail map[string]error
	// Calls counts invocations per method name.
	Calls map[string]int
}

var (
	_ store.EntryStore    = (*Store)(nil)
	_ store.ProfileStore  = (*Store)(nil)
	_ store.CalendarStore = (*Store)(nil)
)

// New returns an empty store
func New() *Store {
	return &Store{
		entries:  make(map[string]models.Entry),
		profiles: make(map[string]models.UserProfile),
		events:   make(map[string]models.CalendarEvent),
		watchers: make(map[int]func([]models.Entry)),

		profileWatchers: make(map[int]profileWatcher),
		Fail:     make(map[string]error),
		Calls:    make(map[string]int),
	}
}

// call records the invocation and returns the injected failure, if any. Callers hold s.mu.
func (s *Store) call(name string) error {
	s.Calls[name]++
	return s.Fail[name]
}

// CallCount reports how many times method name was invoked
func (s *Store) CallCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[name]
}

// SetFail injects err for method name; nil clears it
func (s *Store) SetFail(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.Fail, name)
		return
	}
	s.Fail[name] = err
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func cloneEntry(e models.Entry) models.Entry {
	e.Likes = append([]string{}, e.Likes...)
	e.Comments = append([]models.Comment{}, e.Comments...)
	if e.Coordinates != nil {
		c := *e.Coordinates
		e.Coordinates = &c
	}
	return e
}

func cloneProfile(p models.UserProfile) models.UserProfile {
	p.Followers = append([]string{}, p.Followers...)
	p.Following = append([]string{}, p.Following...)
	return p
}

// sortedEntries returns the collection in createdAt descending order. Callers hold s.mu.
func (s *Store) sortedEntries() []models.Entry {
	out := make([]models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, cloneEntry(e))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// notify pushes the new collection to watchers. Called after s.mu is released.
func (s *Store) notify() {
	s.mu.Lock()
	snapshot := s.sortedEntries()
	fns := make([]func([]models.Entry), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// PutEntry seeds an entry with a fixed id
func (s *Store) PutEntry(e models.Entry) {
	s.mu.Lock()
	if e.Likes == nil {
		e.Likes = []string{}
	}
	if e.Comments == nil {
		e.Comments = []models.Comment{}
	}
	s.entries[e.ID] = cloneEntry(e)
	s.mu.Unlock()
	s.notify()
}

// PutProfile seeds a profile
func (s *Store) PutProfile(p models.UserProfile) {
	s.mu.Lock()
	s.profiles[p.UID] = cloneProfile(p)
	s.mu.Unlock()
	s.notifyProfile(p.UID)
}

// Entry returns a copy of the stored entry, for assertions
func (s *Store) Entry(id string) (models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return cloneEntry(e), ok
}

// Profile returns a copy of the stored profile, for assertions
func (s *Store) Profile(uid string) (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	return cloneProfile(p), ok
}

// ---- EntryStore ----

func (s *Store) ListEntries(ctx context.Context) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("ListEntries"); err != nil {
		return nil, err
	}
	return s.sortedEntries(), nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetEntry"); err != nil {
		return nil, err
	}
	e, ok := s.entries[id]
	if !ok {
		return nil, apperr.NotFound("Entry not found")
	}
	c := cloneEntry(e)
	return &c, nil
}

func (s *Store) CreateEntry(ctx context.Context, entry models.Entry) (*models.Entry, error) {
	s.mu.Lock()
	if err := s.call("CreateEntry"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	entry.ID = s.nextID("entry-")
	if entry.Likes == nil {
		entry.Likes = []string{}
	}
	if entry.Comments == nil {
		entry.Comments = []models.Comment{}
	}
	s.entries[entry.ID] = cloneEntry(entry)
	s.mu.Unlock()
	s.notify()
	return &entry, nil
}

func (s *Store) UpdateEntry(ctx context.Context, id string, fields models.EntryFields) error {
	s.mu.Lock()
	if err := s.call("UpdateEntry"); err != nil {
		s.mu.Unlock()
		return err
	}
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return apperr.NotFound("Entry not found")
	}
	e.Title = fields.Title
	e.Date = fields.Date
	e.Location = fields.Location
	e.Equipment = fields.Equipment
	e.Target = fields.Target
	e.Description = fields.Description
	e.Observers = fields.Observers
	e.AuthorName = fields.AuthorName
	e.ImageURL = fields.ImageURL
	e.Coordinates = fields.Coordinates
	s.entries[id] = cloneEntry(e)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.call("DeleteEntry"); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.entries, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

// mutateEntry applies fn to a stored entry and notifies watchers
func (s *Store) mutateEntry(name, id string, fn func(*models.Entry) error) error {
	s.mu.Lock()
	if err := s.call(name); err != nil {
		s.mu.Unlock()
		return err
	}
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return apperr.NotFound("Entry not found")
	}
	if err := fn(&e); err != nil {
		s.mu.Unlock()
		return err
	}
	s.entries[id] = cloneEntry(e)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) AddLike(ctx context.Context, entryID, uid string) error {
	return s.mutateEntry("AddLike", entryID, func(e *models.Entry) error {
		e.Likes = models.AddID(e.Likes, uid)
		return nil
	})
}

func (s *Store) RemoveLike(ctx context.Context, entryID, uid string) error {
	return s.mutateEntry("RemoveLike", entryID, func(e *models.Entry) error {
		e.Likes = models.RemoveID(e.Likes, uid)
		return nil
	})
}

func (s *Store) AppendComment(ctx context.Context, entryID string, comment models.Comment) error {
	return s.mutateEntry("AppendComment", entryID, func(e *models.Entry) error {
		for _, c := range e.Comments {
			if c == comment {
				return nil
			}
		}
		e.Comments = append(e.Comments, comment)
		return nil
	})
}

func (s *Store) RewriteComments(ctx context.Context, entryID string, fn store.CommentRewrite) ([]models.Comment, error) {
	var result []models.Comment
	err := s.mutateEntry("RewriteComments", entryID, func(e *models.Entry) error {
		next, err := fn(append([]models.Comment{}, e.Comments...))
		if err != nil {
			return err
		}
		if next == nil {
			next = []models.Comment{}
		}
		e.Comments = next
		result = append([]models.Comment{}, next...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// WatchEntries delivers the current collection immediately, then on every change
func (s *Store) WatchEntries(ctx context.Context, fn func([]models.Entry)) error {
	s.mu.Lock()
	if err := s.call("WatchEntries"); err != nil {
		s.mu.Unlock()
		return err
	}
	id := s.nextW
	s.nextW++
	s.watchers[id] = fn
	initial := s.sortedEntries()
	s.mu.Unlock()

	fn(initial)
	<-ctx.Done()

	s.mu.Lock()
	delete(s.watchers, id)
	s.mu.Unlock()
	return ctx.Err()
}

// ---- ProfileStore ----

func (s *Store) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetProfile"); err != nil {
		return nil, err
	}
	p, ok := s.profiles[uid]
	if !ok {
		return nil, apperr.NotFound("Profile not found")
	}
	c := cloneProfile(p)
	return &c, nil
}

func (s *Store) EnsureProfile(ctx context.Context, identity models.Identity) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("EnsureProfile"); err != nil {
		return nil, err
	}
	p, ok := s.profiles[identity.UID]
	if !ok {
		p = models.UserProfile{
			UID:         identity.UID,
			Email:       identity.Email,
			DisplayName: identity.DisplayName,
			PhotoURL:    identity.PhotoURL,
			Followers:   []string{},
			Following:   []string{},
			CreatedAt:   time.Now().UnixMilli(),
		}
	} else {
		if identity.Email != "" {
			p.Email = identity.Email
		}
		if identity.DisplayName != "" {
			p.DisplayName = identity.DisplayName
		}
		if identity.PhotoURL != "" {
			p.PhotoURL = identity.PhotoURL
		}
	}
	s.profiles[identity.UID] = cloneProfile(p)
	c := cloneProfile(p)
	return &c, nil
}

func (s *Store) UpdateProfile(ctx context.Context, uid string, fields models.ProfileFields) error {
	return s.mutateProfile("UpdateProfile", uid, func(p *models.UserProfile) {
		p.DisplayName = fields.DisplayName
		p.Equipment = fields.Equipment
		p.Region = fields.Region
	})
}

func (s *Store) mutateProfile(name, uid string, fn func(*models.UserProfile)) error {
	s.mu.Lock()
	if err := s.call(name); err != nil {
		s.mu.Unlock()
		return err
	}
	p, ok := s.profiles[uid]
	if !ok {
		s.mu.Unlock()
		return apperr.NotFound("Profile not found")
	}
	fn(&p)
	s.profiles[uid] = cloneProfile(p)
	s.mu.Unlock()

	s.notifyProfile(uid)
	return nil
}

func (s *Store) AddFollowing(ctx context.Context, uid, targetUID string) error {
	return s.mutateProfile("AddFollowing", uid, func(p *models.UserProfile) {
		p.Following = models.AddID(p.Following, targetUID)
	})
}

func (s *Store) RemoveFollowing(ctx context.Context, uid, targetUID string) error {
	return s.mutateProfile("RemoveFollowing", uid, func(p *models.UserProfile) {
		p.Following = models.RemoveID(p.Following, targetUID)
	})
}

func (s *Store) AddFollower(ctx context.Context, uid, followerUID string) error {
	return s.mutateProfile("AddFollower", uid, func(p *models.UserProfile) {
		p.Followers = models.AddID(p.Followers, followerUID)
	})
}

func (s *Store) RemoveFollower(ctx context.Context, uid, followerUID string) error {
	return s.mutateProfile("RemoveFollower", uid, func(p *models.UserProfile) {
		p.Followers = models.RemoveID(p.Followers, followerUID)
	})
}

type profileWatcher struct {
	uid string
	fn  func(*models.UserProfile)
}

// profileLocked returns a copy of uid's profile or nil. Callers hold s.mu.
func (s *Store) profileLocked(uid string) *models.UserProfile {
	p, ok := s.profiles[uid]
	if !ok {
		return nil
	}
	c := cloneProfile(p)
	return &c
}

// notifyProfile pushes uid's profile to its watchers. Called after s.mu is released.
func (s *Store) notifyProfile(uid string) {
	s.mu.Lock()
	current := s.profileLocked(uid)
	var fns []func(*models.UserProfile)
	for _, w := range s.profileWatchers {
		if w.uid == uid {
			fns = append(fns, w.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(current)
	}
}

// WatchProfile delivers the current profile (nil if absent), then every change, until ctx ends
func (s *Store) WatchProfile(ctx context.Context, uid string, fn func(*models.UserProfile)) error {
	s.mu.Lock()
	if err := s.call("WatchProfile"); err != nil {
		s.mu.Unlock()
		return err
	}
	id := s.nextW
	s.nextW++
	s.profileWatchers[id] = profileWatcher{uid: uid, fn: fn}
	initial := s.profileLocked(uid)
	s.mu.Unlock()

	fn(initial)
	<-ctx.Done()

	s.mu.Lock()
	delete(s.profileWatchers, id)
	s.mu.Unlock()
	return ctx.Err()
}

// ---- CalendarStore ----

func (s *Store) ListEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("ListEvents"); err != nil {
		return nil, err
	}
	out := make([]models.CalendarEvent, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GetEvent"); err != nil {
		return nil, err
	}
	ev, ok := s.events[id]
	if !ok {
		return nil, apperr.NotFound("Calendar event not found")
	}
	return &ev, nil
}

func (s *Store) CreateEvent(ctx context.Context, event models.CalendarEvent) (*models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("CreateEvent"); err != nil {
		return nil, err
	}
	event.ID = s.nextID("event-")
	s.events[event.ID] = event
	return &event, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id string, fields models.CalendarEventFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("UpdateEvent"); err != nil {
		return err
	}
	ev, ok := s.events[id]
	if !ok {
		return apperr.NotFound("Calendar event not found")
	}
	ev.Date = fields.Date
	ev.Title = fields.Title
	ev.Description = fields.Description
	ev.Time = fields.Time
	ev.Type = fields.Type
	s.events[id] = ev
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("DeleteEvent"); err != nil {
		return err
	}
	delete(s.events, id)
	return nil
}
