package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"io.winapps.starlight/internal/apperr"
	models "io.winapps.starlight/internal/models/account"
)

func (f *Firestore) users() *firestore.CollectionRef {
	return f.client.Collection(UsersCollection)
}

func profileFromDoc(doc *firestore.DocumentSnapshot) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", doc.Ref.ID, err)
	}
	if p.UID == "" {
		p.UID = doc.Ref.ID
	}
	normalizeProfile(&p)
	return &p, nil
}

// GetProfile reads users/{uid}
func (f *Firestore) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	if uid == "" {
		return nil, apperr.Validation("User ID is required")
	}
	doc, err := f.users().Doc(uid).Get(ctx)
	if err != nil {
		return nil, classify(err, "Profile not found")
	}
	p, err := profileFromDoc(doc)
	if err != nil {
		return nil, classify(err, "Failed to read profile")
	}
	return p, nil
}

// EnsureProfile creates the profile with empty sets on first sign-in. For an
// existing profile only the identity fields the token actually carries are refreshed.
func (f *Firestore) EnsureProfile(ctx context.Context, identity models.Identity) (*models.UserProfile, error) {
	ref := f.users().Doc(identity.UID)
	var out *models.UserProfile

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			p := models.UserProfile{
				UID:         identity.UID,
				Email:       identity.Email,
				DisplayName: identity.DisplayName,
				PhotoURL:    identity.PhotoURL,
				Followers:   []string{},
				Following:   []string{},
				CreatedAt:   time.Now().UnixMilli(),
			}
			out = &p
			return tx.Create(ref, p)
		}
		if err != nil {
			return err
		}

		p, err := profileFromDoc(doc)
		if err != nil {
			return err
		}
		var updates []firestore.Update
		if identity.Email != "" && identity.Email != p.Email {
			updates = append(updates, firestore.Update{Path: "email", Value: identity.Email})
			p.Email = identity.Email
		}
		if identity.DisplayName != "" && identity.DisplayName != p.DisplayName {
			updates = append(updates, firestore.Update{Path: "displayName", Value: identity.DisplayName})
			p.DisplayName = identity.DisplayName
		}
		if identity.PhotoURL != "" && identity.PhotoURL != p.PhotoURL {
			updates = append(updates, firestore.Update{Path: "photoURL", Value: identity.PhotoURL})
			p.PhotoURL = identity.PhotoURL
		}
		out = p
		if len(updates) == 0 {
			return nil
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return nil, classify(err, "Failed to load profile")
	}
	return out, nil
}

// UpdateProfile writes the user-editable profile fields
func (f *Firestore) UpdateProfile(ctx context.Context, uid string, fields models.ProfileFields) error {
	_, err := f.users().Doc(uid).Update(ctx, []firestore.Update{
		{Path: "displayName", Value: fields.DisplayName},
		{Path: "equipment", Value: fields.Equipment},
		{Path: "region", Value: fields.Region},
	})
	return classify(err, "Failed to update profile")
}

func (f *Firestore) setOp(ctx context.Context, uid, field string, value interface{}, msg string) error {
	_, err := f.users().Doc(uid).Update(ctx, []firestore.Update{{Path: field, Value: value}})
	return classify(err, msg)
}

// AddFollowing adds targetUID to uid's following set
func (f *Firestore) AddFollowing(ctx context.Context, uid, targetUID string) error {
	return f.setOp(ctx, uid, "following", firestore.ArrayUnion(targetUID), "Failed to follow user")
}

// RemoveFollowing removes targetUID from uid's following set
func (f *Firestore) RemoveFollowing(ctx context.Context, uid, targetUID string) error {
	return f.setOp(ctx, uid, "following", firestore.ArrayRemove(targetUID), "Failed to unfollow user")
}

// AddFollower adds followerUID to uid's followers set
func (f *Firestore) AddFollower(ctx context.Context, uid, followerUID string) error {
	return f.setOp(ctx, uid, "followers", firestore.ArrayUnion(followerUID), "Failed to update followers")
}

// RemoveFollower removes followerUID from uid's followers set
func (f *Firestore) RemoveFollower(ctx context.Context, uid, followerUID string) error {
	return f.setOp(ctx, uid, "followers", firestore.ArrayRemove(followerUID), "Failed to update followers")
}

// WatchProfile streams users/{uid}; fn receives nil while the document does not exist
func (f *Firestore) WatchProfile(ctx context.Context, uid string, fn func(*models.UserProfile)) error {
	it := f.users().Doc(uid).Snapshots(ctx)
	defer it.Stop()

	for {
		doc, err := it.Next()
		if err != nil {
			if isStopped(err) || ctx.Err() != nil {
				return ctx.Err()
			}
			return classify(err, "Profile listener failed")
		}
		if !doc.Exists() {
			fn(nil)
			continue
		}
		p, err := profileFromDoc(doc)
		if err != nil {
			return err
		}
		fn(p)
	}
}
