package social

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"io.winapps.starlight/internal/apperr"
	"io.winapps.starlight/internal/logger"
	"io.winapps.starlight/internal/metrics"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/security"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/store/memstore"
)

type sentNotification struct {
	uid   string
	title string
	data  map[string]string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(ctx context.Context, uid, title, body string, data map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{uid: uid, title: title, data: data})
}

type secondaryRecorder struct {
	metrics.Nop
	secondary []string
}

func (r *secondaryRecorder) RecordSecondaryFailure(op string) {
	r.secondary = append(r.secondary, op)
}

func newTestService(t *testing.T) (*Service, *memstore.Store, *fakeNotifier) {
	t.Helper()
	st := memstore.New()
	n := &fakeNotifier{}
	svc := NewService(st, st, n, security.NewSanitizer(), metrics.Nop{}, logger.Nop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	seq := 0
	svc.newID = func() string {
		seq++
		return "c" + string(rune('0'+seq))
	}
	return svc, st, n
}

func viewer(uid string) *session.Viewer {
	return &session.Viewer{UID: uid, DisplayName: uid + "-name"}
}

func seedEntry(st *memstore.Store, id, owner string) *models.Entry {
	st.PutEntry(models.Entry{ID: id, UserID: owner, Title: "Orion", CreatedAt: 1})
	e, _ := st.Entry(id)
	return &e
}

func TestToggleLike_AddsThenRemoves(t *testing.T) {
	svc, st, n := newTestService(t)
	ctx := context.Background()
	entry := seedEntry(st, "e1", "u1")

	liked, err := svc.ToggleLike(ctx, entry, viewer("u2"))
	if err != nil || !liked {
		t.Fatalf("first toggle: liked=%v err=%v", liked, err)
	}
	got, _ := st.Entry("e1")
	if !reflect.DeepEqual(got.Likes, []string{"u2"}) {
		t.Fatalf("likes after like: %v", got.Likes)
	}
	if len(n.sent) != 1 || n.sent[0].uid != "u1" {
		t.Errorf("expected owner notification, got %+v", n.sent)
	}

	liked, err = svc.ToggleLike(ctx, &got, viewer("u2"))
	if err != nil || liked {
		t.Fatalf("second toggle: liked=%v err=%v", liked, err)
	}
	got, _ = st.Entry("e1")
	if len(got.Likes) != 0 {
		t.Fatalf("likes after unlike: %v", got.Likes)
	}
}

func TestToggleLike_StaleSnapshotNeverDuplicates(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	entry := seedEntry(st, "e1", "u1")

	// Two toggles from the same stale snapshot both request an add.
	for i := 0; i < 2; i++ {
		if _, err := svc.ToggleLike(ctx, entry, viewer("u2")); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	got, _ := st.Entry("e1")
	if !reflect.DeepEqual(got.Likes, []string{"u2"}) {
		t.Fatalf("likes = %v, want [u2]", got.Likes)
	}
}

func TestToggleLike_SelfLikeDoesNotNotify(t *testing.T) {
	svc, st, n := newTestService(t)
	entry := seedEntry(st, "e1", "u1")

	if _, err := svc.ToggleLike(context.Background(), entry, viewer("u1")); err != nil {
		t.Fatal(err)
	}
	if len(n.sent) != 0 {
		t.Errorf("self like notified: %+v", n.sent)
	}
}

func TestToggleLike_Errors(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	entry := seedEntry(st, "e1", "u1")

	if _, err := svc.ToggleLike(ctx, entry, nil); !errors.Is(err, apperr.ErrAuthRequired) {
		t.Errorf("nil viewer: got %v", err)
	}
	if st.CallCount("AddLike") != 0 {
		t.Errorf("store touched without a viewer")
	}

	st.SetFail("AddLike", apperr.Wrap(apperr.KindStoreFailure, "Failed to like entry", errors.New("unavailable")))
	if _, err := svc.ToggleLike(ctx, entry, viewer("u2")); apperr.KindOf(err) != apperr.KindStoreFailure {
		t.Errorf("store failure: got %v", err)
	}
}

func TestSubmitComment_BlankTextSkipsStore(t *testing.T) {
	svc, st, _ := newTestService(t)
	entry := seedEntry(st, "e1", "u1")

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.SubmitComment(context.Background(), entry, viewer("u2"), text)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("text %q: got %v", text, err)
		}
	}
	if n := st.CallCount("AppendComment"); n != 0 {
		t.Fatalf("AppendComment called %d times", n)
	}
}

func TestSubmitComment_AppendsSnapshot(t *testing.T) {
	svc, st, n := newTestService(t)
	entry := seedEntry(st, "e1", "u1")

	c, err := svc.SubmitComment(context.Background(), entry, viewer("u2"), "  Clear skies<script>alert(1)</script>  ")
	if err != nil {
		t.Fatal(err)
	}
	want := models.Comment{ID: "c1", UserID: "u2", UserName: "u2-name", Text: "Clear skies", CreatedAt: 1700000000000}
	if *c != want {
		t.Fatalf("comment = %+v, want %+v", *c, want)
	}
	got, _ := st.Entry("e1")
	if len(got.Comments) != 1 || got.Comments[0] != want {
		t.Fatalf("stored comments = %+v", got.Comments)
	}
	if len(n.sent) != 1 || n.sent[0].data["commentId"] != "c1" {
		t.Errorf("notification = %+v", n.sent)
	}
}

func TestSubmitComment_KeepsCatalogueIDs(t *testing.T) {
	svc, st, _ := newTestService(t)
	entry := seedEntry(st, "e1", "u1")

	for _, text := range []string{"<M42>", "saw <M31> tonight", "Finally caught <M31> and <NGC 224> tonight"} {
		c, err := svc.SubmitComment(context.Background(), entry, viewer("u2"), text)
		if err != nil {
			t.Fatalf("text %q: %v", text, err)
		}
		if c.Text != text {
			t.Errorf("stored %q, want %q", c.Text, text)
		}
	}

	got, _ := st.Entry("e1")
	edited, err := svc.EditComment(context.Background(), "e1", got.Comments[0].ID, viewer("u2"), "<M42> again")
	if err != nil {
		t.Fatal(err)
	}
	if edited[0].Text != "<M42> again" {
		t.Errorf("edited text = %q", edited[0].Text)
	}
}

func TestSubmitComment_AnonymousFallbackName(t *testing.T) {
	svc, st, _ := newTestService(t)
	entry := seedEntry(st, "e1", "u1")

	c, err := svc.SubmitComment(context.Background(), entry, &session.Viewer{UID: "u3"}, "hi")
	if err != nil {
		t.Fatal(err)
	}
	if c.UserName != DefaultCommenterName {
		t.Errorf("userName = %q", c.UserName)
	}
}

func seedComments(st *memstore.Store) {
	st.PutEntry(models.Entry{ID: "e1", UserID: "u1", Comments: []models.Comment{
		{ID: "c1", UserID: "u1", Text: "first"},
		{ID: "c2", UserID: "u2", Text: "second"},
		{ID: "c3", UserID: "u1", Text: "third"},
	}})
}

func TestEditComment_PreservesOrderAndLength(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedComments(st)

	out, err := svc.EditComment(context.Background(), "e1", "c2", viewer("u2"), "edited")
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Comment{
		{ID: "c1", UserID: "u1", Text: "first"},
		{ID: "c2", UserID: "u2", Text: "edited"},
		{ID: "c3", UserID: "u1", Text: "third"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("comments = %+v", out)
	}
	got, _ := st.Entry("e1")
	if !reflect.DeepEqual(got.Comments, want) {
		t.Fatalf("stored = %+v", got.Comments)
	}
}

func TestDeleteComment_RemovesOnlyTarget(t *testing.T) {
	svc, st, _ := newTestService(t)
	seedComments(st)

	out, err := svc.DeleteComment(context.Background(), "e1", "c1", viewer("u1"))
	if err != nil {
		t.Fatal(err)
	}
	var gotIDs []string
	for _, c := range out {
		gotIDs = append(gotIDs, c.ID)
	}
	if !reflect.DeepEqual(gotIDs, []string{"c2", "c3"}) {
		t.Fatalf("ids = %v", gotIDs)
	}
}

func TestCommentRewrite_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		commentID string
		viewer    *session.Viewer
		text      string
		want      error
	}{
		{"not the author", "c1", viewer("u2"), "x", apperr.ErrPermissionDenied},
		{"unknown comment", "c9", viewer("u1"), "x", apperr.ErrNotFound},
		{"anonymous", "c1", nil, "x", apperr.ErrAuthRequired},
		{"blank edit", "c1", viewer("u1"), "  ", apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, _ := newTestService(t)
			seedComments(st)

			_, err := svc.EditComment(context.Background(), "e1", tt.commentID, tt.viewer, tt.text)
			if !errors.Is(err, tt.want) {
				t.Fatalf("edit: got %v, want %v", err, tt.want)
			}
			if tt.text != "  " {
				_, err = svc.DeleteComment(context.Background(), "e1", tt.commentID, tt.viewer)
				if !errors.Is(err, tt.want) {
					t.Fatalf("delete: got %v, want %v", err, tt.want)
				}
			}
			got, _ := st.Entry("e1")
			if len(got.Comments) != 3 {
				t.Fatalf("comments changed: %+v", got.Comments)
			}
		})
	}
}

func TestFollow_SecondaryFailureIsSwallowed(t *testing.T) {
	svc, st, _ := newTestService(t)
	rec := &secondaryRecorder{}
	svc.metrics = rec
	st.PutProfile(models.UserProfile{UID: "u1"})
	st.PutProfile(models.UserProfile{UID: "u2"})
	st.SetFail("AddFollower", apperr.PermissionDenied("rules"))

	if err := svc.Follow(context.Background(), "u2", viewer("u1")); err != nil {
		t.Fatalf("follow returned %v", err)
	}
	p1, _ := st.Profile("u1")
	if !reflect.DeepEqual(p1.Following, []string{"u2"}) {
		t.Errorf("u1 following = %v", p1.Following)
	}
	p2, _ := st.Profile("u2")
	if len(p2.Followers) != 0 {
		t.Errorf("u2 followers = %v", p2.Followers)
	}
	if !reflect.DeepEqual(rec.secondary, []string{"follow"}) {
		t.Errorf("secondary failures = %v", rec.secondary)
	}
}

func TestFollow_PrimaryFailurePropagates(t *testing.T) {
	svc, st, n := newTestService(t)
	st.PutProfile(models.UserProfile{UID: "u1"})
	st.PutProfile(models.UserProfile{UID: "u2"})
	st.SetFail("AddFollowing", apperr.Wrap(apperr.KindStoreFailure, "Failed to follow user", errors.New("down")))

	if err := svc.Follow(context.Background(), "u2", viewer("u1")); apperr.KindOf(err) != apperr.KindStoreFailure {
		t.Fatalf("got %v", err)
	}
	if st.CallCount("AddFollower") != 0 {
		t.Error("secondary write attempted after primary failure")
	}
	if len(n.sent) != 0 {
		t.Error("notified after failure")
	}
}

func TestFollow_Rejections(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Follow(ctx, "u1", viewer("u1")); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("self follow: %v", err)
	}
	if err := svc.Follow(ctx, "", viewer("u1")); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty target: %v", err)
	}
	if err := svc.Follow(ctx, "u2", nil); !errors.Is(err, apperr.ErrAuthRequired) {
		t.Errorf("anonymous: %v", err)
	}
	if st.CallCount("AddFollowing") != 0 {
		t.Error("store touched on rejected follow")
	}
}

func TestToggleFollow(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	st.PutProfile(models.UserProfile{UID: "u1"})
	st.PutProfile(models.UserProfile{UID: "u2"})

	v := viewer("u1")
	v.Profile = &models.UserProfile{UID: "u1"}
	following, err := svc.ToggleFollow(ctx, "u2", v)
	if err != nil || !following {
		t.Fatalf("follow: %v %v", following, err)
	}

	p, _ := st.Profile("u1")
	v.Profile = &p
	following, err = svc.ToggleFollow(ctx, "u2", v)
	if err != nil || following {
		t.Fatalf("unfollow: %v %v", following, err)
	}
	p1, _ := st.Profile("u1")
	p2, _ := st.Profile("u2")
	if len(p1.Following) != 0 || len(p2.Followers) != 0 {
		t.Fatalf("sets not cleared: %v %v", p1.Following, p2.Followers)
	}
}
