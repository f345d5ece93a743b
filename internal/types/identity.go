package types

// User is the identity record carried by a session. Metadata is free-form
// (name, avatar_url, bio, preferences) so profile overrides can merge in
// without schema churn.
type User struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	Metadata  map[string]interface{} `json:"user_metadata"`
	CreatedAt string                 `json:"created_at"`
}

// Session is non-nil exactly when its user is non-nil.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *User  `json:"user"`
}

// Profile is the separately persisted per-user profile record. Its values
// take precedence over the base identity's metadata for overlapping keys.
type Profile struct {
	UserID      string                 `json:"user_id"`
	Name        string                 `json:"name,omitempty"`
	Bio         string                 `json:"bio,omitempty"`
	AvatarURL   string                 `json:"avatar_url,omitempty"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
	UpdatedAt   string                 `json:"updated_at,omitempty"`
}

// MergeProfile folds profile overrides into the user's metadata. The user's
// own metadata survives only for keys the profile does not set.
func MergeProfile(u *User, p *Profile) {
	if u == nil || p == nil {
		return
	}
	if u.Metadata == nil {
		u.Metadata = map[string]interface{}{}
	}
	if p.Name != "" {
		u.Metadata["name"] = p.Name
	}
	if p.Bio != "" {
		u.Metadata["bio"] = p.Bio
	}
	if p.AvatarURL != "" {
		u.Metadata["avatar_url"] = p.AvatarURL
	}
	if len(p.Preferences) > 0 {
		u.Metadata["preferences"] = p.Preferences
	}
}
