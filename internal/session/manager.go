package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
	"io.winapps.starlight/internal/store"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client satisfies it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// TokenCache stores verified identities keyed by token hash
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Manager resolves bearer tokens into viewers. The token cache is the only
// process-external session state; the profile always comes from the store.
type Manager struct {
	verifier TokenVerifier
	cache    TokenCache
	profiles store.ProfileStore
	ttl      time.Duration
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewManager creates a session manager
func NewManager(verifier TokenVerifier, cache TokenCache, profiles store.ProfileStore, ttl time.Duration, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		verifier: verifier,
		cache:    cache,
		profiles: profiles,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

type cachedIdentity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}

// identify returns the identity behind token, from cache when possible
func (m *Manager) identify(ctx context.Context, token string) (models.Identity, error) {
	key := cacheKey(token)
	if raw, ok, err := m.cache.Get(ctx, key); err != nil {
		m.logger.Warnw("token cache read failed", "error", err)
	} else if ok {
		var ci cachedIdentity
		if err := json.Unmarshal([]byte(raw), &ci); err == nil && ci.UID != "" {
			return models.Identity(ci), nil
		}
	}

	tok, err := m.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return models.Identity{}, apperr.Wrap(apperr.KindAuthRequired, "Invalid or expired token", err)
	}
	identity := identityFromToken(tok)

	ttl := m.ttl
	if tok.Expires > 0 {
		if left := time.Unix(tok.Expires, 0).Sub(m.now()); left < ttl {
			ttl = left
		}
	}
	if ttl > 0 {
		data, _ := json.Marshal(cachedIdentity(identity))
		if err := m.cache.Set(ctx, key, string(data), ttl); err != nil {
			m.logger.Warnw("token cache write failed", "error", err, "user_uid", identity.UID)
		}
	}
	return identity, nil
}

func identityFromToken(tok *auth.Token) models.Identity {
	id := models.Identity{UID: tok.UID}
	if v, ok := tok.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := tok.Claims["name"].(string); ok {
		id.DisplayName = v
	}
	if v, ok := tok.Claims["picture"].(string); ok {
		id.PhotoURL = v
	}
	return id
}

func viewerFrom(identity models.Identity, profile *models.UserProfile) *Viewer {
	return &Viewer{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		Profile:     profile,
	}
}

// Authenticate resolves token into a viewer merged with the current profile.
// A missing profile is not an error: it is created on sign-in.
func (m *Manager) Authenticate(ctx context.Context, token string) (*Viewer, error) {
	if token == "" {
		return nil, apperr.AuthRequired("Token is required")
	}
	identity, err := m.identify(ctx, token)
	if err != nil {
		return nil, err
	}

	profile, err := m.profiles.GetProfile(ctx, identity.UID)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			return nil, err
		}
		profile = nil
	}
	return viewerFrom(identity, profile), nil
}

// SignIn verifies the token, lazily creates the profile and refreshes the
// identity fields on it.
func (m *Manager) SignIn(ctx context.Context, token string) (*Viewer, error) {
	if token == "" {
		return nil, apperr.AuthRequired("Token is required")
	}
	identity, err := m.identify(ctx, token)
	if err != nil {
		return nil, err
	}
	profile, err := m.profiles.EnsureProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	m.logger.Infow("user signed in", "user_uid", identity.UID)
	return viewerFrom(identity, profile), nil
}

// SignOut forgets the cached identity for token
func (m *Manager) SignOut(ctx context.Context, token string) error {
	if err := m.cache.Del(ctx, cacheKey(token)); err != nil {
		return apperr.Wrap(apperr.KindStoreFailure, "Failed to end session", err)
	}
	return nil
}
