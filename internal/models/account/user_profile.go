package models

// UserProfile is the users/{uid} document. Identity fields are refreshed from
// the auth token on every sign-in; equipment and region are user-editable.
type UserProfile struct {
	UID         string   `json:"uid" firestore:"uid"`
	Email       string   `json:"email,omitempty" firestore:"email"`
	DisplayName string   `json:"displayName" firestore:"displayName"`
	PhotoURL    string   `json:"photoURL" firestore:"photoURL"`
	Equipment   string   `json:"equipment" firestore:"equipment"`
	Region      string   `json:"region" firestore:"region"`
	Followers   []string `json:"followers" firestore:"followers"`
	Following   []string `json:"following" firestore:"following"`
	CreatedAt   int64    `json:"createdAt" firestore:"createdAt"`
}

// Identity is what the auth provider tells us about a signed-in user
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// ProfileFields are the profile fields a user may edit
type ProfileFields struct {
	DisplayName string
	Equipment   string
	Region      string
}

// Public strips the email for responses about other users
func (p UserProfile) Public() UserProfile {
	p.Email = ""
	return p
}

// IsFollowing reports whether the profile follows uid
func (p *UserProfile) IsFollowing(uid string) bool {
	if p == nil {
		return false
	}
	return ContainsID(p.Following, uid)
}
