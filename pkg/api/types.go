package api

import "time"

// AccountUser is the user summary returned alongside an auth token.
type AccountUser struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName,omitempty"`
}

// AuthResult is the response of every /account endpoint.
type AuthResult struct {
	Token string       `json:"token"`
	User  *AccountUser `json:"user,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type ExternalLoginRequest struct {
	Provider string `json:"provider"`
	IDToken  string `json:"idToken"`
}

// ProviderGoogle is the only external login provider the backend accepts.
const ProviderGoogle = "Google"

type UserProfile struct {
	ID                string    `json:"id"`
	UserName          string    `json:"userName"`
	DisplayName       string    `json:"displayName"`
	Bio               *string   `json:"bio,omitempty"`
	ProfilePictureURL *string   `json:"profilePictureUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ProfilePatch updates only the non-nil fields.
type ProfilePatch struct {
	DisplayName *string `json:"displayName,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

type Preferences struct {
	PreferredLanguage         string `json:"preferredLanguage"`
	IsDarkModeEnabled         bool   `json:"isDarkModeEnabled"`
	ReceiveEmailNotifications bool   `json:"receiveEmailNotifications"`
	UnitSystem                string `json:"unitSystem"`
}

// PreferencesPatch is a partial preferences update; nil fields are omitted.
type PreferencesPatch struct {
	PreferredLanguage         *string `json:"preferredLanguage,omitempty"`
	IsDarkModeEnabled         *bool   `json:"isDarkModeEnabled,omitempty"`
	ReceiveEmailNotifications *bool   `json:"receiveEmailNotifications,omitempty"`
	UnitSystem                *string `json:"unitSystem,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p PreferencesPatch) Empty() bool {
	return p.PreferredLanguage == nil && p.IsDarkModeEnabled == nil &&
		p.ReceiveEmailNotifications == nil && p.UnitSystem == nil
}

// Apply returns prefs with the patch applied.
func (p PreferencesPatch) Apply(prefs Preferences) Preferences {
	if p.PreferredLanguage != nil {
		prefs.PreferredLanguage = *p.PreferredLanguage
	}
	if p.IsDarkModeEnabled != nil {
		prefs.IsDarkModeEnabled = *p.IsDarkModeEnabled
	}
	if p.ReceiveEmailNotifications != nil {
		prefs.ReceiveEmailNotifications = *p.ReceiveEmailNotifications
	}
	if p.UnitSystem != nil {
		prefs.UnitSystem = *p.UnitSystem
	}
	return prefs
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
