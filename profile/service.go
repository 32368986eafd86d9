// Package profile loads and edits the signed-in user's profile and
// preferences, and exposes the dark-mode preference to the appearance
// resolver.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-fitspire/pkg/activity"
	"github.com/goliatone/go-fitspire/pkg/api"
	"go.uber.org/zap"
)

const maxBioLength = 500

var ErrInvalid = errors.New("profile: invalid input")

// Client is the subset of the API client used by the service.
type Client interface {
	GetProfile(ctx context.Context) (api.UserProfile, error)
	UpdateProfile(ctx context.Context, patch api.ProfilePatch) (api.UserProfile, error)
	UploadProfilePhoto(ctx context.Context, fileName, contentType string, image io.Reader) (api.UserProfile, error)
	GetPreferences(ctx context.Context) (api.Preferences, error)
	UpdatePreferences(ctx context.Context, patch api.PreferencesPatch) (api.Preferences, error)
}

// Profile is what the profile screen renders.
type Profile struct {
	User        api.UserProfile
	Preferences api.Preferences
}

// Edit is a full save from the profile screen.
type Edit struct {
	DisplayName string
	Bio         string
	Preferences api.Preferences
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithEmitter(emitter *activity.Emitter) Option {
	return func(s *Service) {
		s.emitter = emitter
	}
}

// WithActor supplies the user id stamped on activity events.
func WithActor(actor func() string) Option {
	return func(s *Service) {
		s.actor = actor
	}
}

type Service struct {
	client  Client
	logger  *zap.Logger
	emitter *activity.Emitter
	actor   func() string
}

func NewService(client Client, opts ...Option) *Service {
	s := &Service{client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.Named("profile")
	return s
}

// Load fetches the profile and preferences concurrently.
func (s *Service) Load(ctx context.Context) (Profile, error) {
	var (
		wg               sync.WaitGroup
		out              Profile
		userErr, prefErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.User, userErr = s.client.GetProfile(ctx)
	}()
	go func() {
		defer wg.Done()
		out.Preferences, prefErr = s.client.GetPreferences(ctx)
	}()
	wg.Wait()
	if err := errors.Join(userErr, prefErr); err != nil {
		s.logger.Warn("loading profile failed", zap.Error(err))
		return Profile{}, err
	}
	return out, nil
}

// Save writes the profile fields, then the full preference record.
func (s *Service) Save(ctx context.Context, edit Edit) (Profile, error) {
	if err := ValidatePreferences(edit.Preferences); err != nil {
		return Profile{}, err
	}
	patch := api.ProfilePatch{
		DisplayName: api.Ptr(strings.TrimSpace(edit.DisplayName)),
		Bio:         api.Ptr(strings.TrimSpace(edit.Bio)),
	}
	user, err := s.UpdateProfile(ctx, patch)
	if err != nil {
		return Profile{}, err
	}
	prefs, err := s.UpdatePreferences(ctx, api.PreferencesPatch{
		PreferredLanguage:         api.Ptr(edit.Preferences.PreferredLanguage),
		IsDarkModeEnabled:         api.Ptr(edit.Preferences.IsDarkModeEnabled),
		ReceiveEmailNotifications: api.Ptr(edit.Preferences.ReceiveEmailNotifications),
		UnitSystem:                api.Ptr(edit.Preferences.UnitSystem),
	})
	if err != nil {
		return Profile{User: user}, err
	}
	return Profile{User: user, Preferences: prefs}, nil
}

// UpdateProfile validates and sends a profile patch.
func (s *Service) UpdateProfile(ctx context.Context, patch api.ProfilePatch) (api.UserProfile, error) {
	if err := ValidateProfile(patch); err != nil {
		return api.UserProfile{}, err
	}
	user, err := s.client.UpdateProfile(ctx, patch)
	if err != nil {
		s.logger.Warn("updating profile failed", zap.Error(err))
		return api.UserProfile{}, err
	}
	changed := map[string]any{}
	if patch.DisplayName != nil {
		changed["displayName"] = *patch.DisplayName
	}
	if patch.Bio != nil {
		changed["bio"] = *patch.Bio
	}
	s.emit(ctx, activity.BuildProfileUpdatedEvent(activity.ProfileInput{
		UserID:     s.userID(user.ID),
		Changed:    changed,
		OccurredAt: time.Now(),
	}))
	return user, nil
}

// UpdatePreferences validates and sends a partial preferences update. An
// empty patch is a no-op that returns the current record.
func (s *Service) UpdatePreferences(ctx context.Context, patch api.PreferencesPatch) (api.Preferences, error) {
	if patch.Empty() {
		return s.client.GetPreferences(ctx)
	}
	if err := ValidatePatch(patch); err != nil {
		return api.Preferences{}, err
	}
	prefs, err := s.client.UpdatePreferences(ctx, patch)
	if err != nil {
		s.logger.Warn("updating preferences failed", zap.Error(err))
		return api.Preferences{}, err
	}
	s.emit(ctx, activity.BuildPreferencesUpdatedEvent(activity.ProfileInput{
		UserID:     s.userID(""),
		Changed:    patchFields(patch),
		OccurredAt: time.Now(),
	}))
	return prefs, nil
}

// UploadPhoto sends a new profile picture.
func (s *Service) UploadPhoto(ctx context.Context, fileName, contentType string, image io.Reader) (api.UserProfile, error) {
	if strings.TrimSpace(fileName) == "" {
		fileName = fmt.Sprintf("profile_%d.jpg", time.Now().UnixMilli())
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	user, err := s.client.UploadProfilePhoto(ctx, fileName, contentType, image)
	if err != nil {
		s.logger.Warn("uploading photo failed", zap.Error(err))
		return api.UserProfile{}, err
	}
	return user, nil
}

// FetchDarkMode reads the backend dark-mode flag.
func (s *Service) FetchDarkMode(ctx context.Context) (bool, error) {
	prefs, err := s.client.GetPreferences(ctx)
	if err != nil {
		return false, err
	}
	return prefs.IsDarkModeEnabled, nil
}

// PushDarkMode writes only the dark-mode flag.
func (s *Service) PushDarkMode(ctx context.Context, dark bool) error {
	_, err := s.UpdatePreferences(ctx, api.PreferencesPatch{IsDarkModeEnabled: api.Ptr(dark)})
	return err
}

func (s *Service) userID(fallback string) string {
	if s.actor != nil {
		if id := s.actor(); id != "" {
			return id
		}
	}
	return fallback
}

func (s *Service) emit(ctx context.Context, event activity.Event) {
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.Warn("profile activity failed", zap.Error(err))
	}
}

func patchFields(patch api.PreferencesPatch) map[string]any {
	out := map[string]any{}
	if patch.PreferredLanguage != nil {
		out[languageField.Path] = *patch.PreferredLanguage
	}
	if patch.IsDarkModeEnabled != nil {
		out[darkModeField.Path] = *patch.IsDarkModeEnabled
	}
	if patch.ReceiveEmailNotifications != nil {
		out[emailField.Path] = *patch.ReceiveEmailNotifications
	}
	if patch.UnitSystem != nil {
		out[unitsField.Path] = *patch.UnitSystem
	}
	return out
}

// ValidatePreferences checks a full preference record.
func ValidatePreferences(prefs api.Preferences) error {
	return ValidatePatch(api.PreferencesPatch{
		PreferredLanguage: api.Ptr(prefs.PreferredLanguage),
		UnitSystem:        api.Ptr(prefs.UnitSystem),
	})
}

// ValidatePatch checks the enum fields present in patch.
func ValidatePatch(patch api.PreferencesPatch) error {
	var problems []string
	if patch.PreferredLanguage != nil && !languageField.Allows(*patch.PreferredLanguage) {
		problems = append(problems, fmt.Sprintf("unsupported language %q", *patch.PreferredLanguage))
	}
	if patch.UnitSystem != nil && !unitsField.Allows(*patch.UnitSystem) {
		problems = append(problems, fmt.Sprintf("unsupported unit system %q", *patch.UnitSystem))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateProfile rejects an empty display name and overlong bios.
func ValidateProfile(patch api.ProfilePatch) error {
	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		return fmt.Errorf("%w: display name must not be empty", ErrInvalid)
	}
	if patch.Bio != nil && len([]rune(*patch.Bio)) > maxBioLength {
		return fmt.Errorf("%w: bio exceeds %d characters", ErrInvalid, maxBioLength)
	}
	return nil
}
