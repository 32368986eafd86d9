package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-fitspire/internal/backendtest"
	"github.com/goliatone/go-fitspire/pkg/api"
)

func newClient(t *testing.T, baseURL string, token string, opts ...api.Option) *api.Client {
	t.Helper()
	opts = append(opts, api.WithTokenSource(api.TokenFunc(func(context.Context) (string, error) {
		return token, nil
	})))
	client, err := api.New(baseURL, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewRejectsRelativeURL(t *testing.T) {
	for _, raw := range []string{"", "/api", "::nope"} {
		if _, err := api.New(raw); !errors.Is(err, api.ErrBaseURL) {
			t.Fatalf("%q: expected ErrBaseURL, got %v", raw, err)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	backend := backendtest.New()
	client := newClient(t, backend.Start(t), "")
	ctx := context.Background()

	reg, err := client.Register(ctx, api.RegisterRequest{Email: "ana@example.com", UserName: "ana", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Token == "" || reg.User == nil || reg.User.UserName != "ana" {
		t.Fatalf("unexpected register result %+v", reg)
	}

	byName, err := client.Login(ctx, api.LoginRequest{Login: "ANA", Password: "secret1"})
	if err != nil {
		t.Fatalf("login by user name: %v", err)
	}
	if byName.User.ID != reg.User.ID {
		t.Fatalf("login returned a different user: %+v", byName.User)
	}

	_, err = client.Login(ctx, api.LoginRequest{Login: "ana@example.com", Password: "wrong"})
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if msg := api.MessageOf(err, "fallback"); msg != "Invalid login or password" {
		t.Fatalf("message = %q", msg)
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	backend := backendtest.New()
	client := newClient(t, backend.Start(t), "")
	ctx := context.Background()

	_, err := client.Register(ctx, api.RegisterRequest{Email: "bad", UserName: "x", Password: "1"})
	if !errors.Is(err, api.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if _, _, err := backend.SeedUser("ana@example.com", "ana", "secret1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err = client.Register(ctx, api.RegisterRequest{Email: "ana@example.com", UserName: "ana2", Password: "secret1"})
	if !errors.Is(err, api.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestExternalLogin(t *testing.T) {
	backend := backendtest.New()
	backend.RegisterGoogleToken("google-id-token", "sam@example.com")
	client := newClient(t, backend.Start(t), "")
	ctx := context.Background()

	res, err := client.ExternalLogin(ctx, api.ExternalLoginRequest{Provider: api.ProviderGoogle, IDToken: "google-id-token"})
	if err != nil {
		t.Fatalf("external login: %v", err)
	}
	if res.User == nil || res.User.UserName != "sam" {
		t.Fatalf("unexpected user %+v", res.User)
	}
	_, err = client.ExternalLogin(ctx, api.ExternalLoginRequest{Provider: api.ProviderGoogle, IDToken: "forged"})
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestProfileEndpoints(t *testing.T) {
	backend := backendtest.New()
	_, token, err := backend.SeedUser("ana@example.com", "ana", "secret1")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	client := newClient(t, backend.Start(t), token)
	ctx := context.Background()

	profile, err := client.GetProfile(ctx)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.UserName != "ana" || profile.CreatedAt.IsZero() {
		t.Fatalf("unexpected profile %+v", profile)
	}

	updated, err := client.UpdateProfile(ctx, api.ProfilePatch{DisplayName: api.Ptr("Ana B"), Bio: api.Ptr("Runner")})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.DisplayName != "Ana B" || updated.Bio == nil || *updated.Bio != "Runner" {
		t.Fatalf("unexpected update %+v", updated)
	}

	photo, err := client.UploadProfilePhoto(ctx, "me.jpg", "image/jpeg", strings.NewReader("jpegbytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if photo.ProfilePictureURL == nil || !strings.HasSuffix(*photo.ProfilePictureURL, "/me.jpg") {
		t.Fatalf("unexpected picture url %v", photo.ProfilePictureURL)
	}

	_, err = client.UploadProfilePhoto(ctx, "notes.txt", "text/plain", strings.NewReader("hi"))
	if !errors.Is(err, api.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for non-image, got %v", err)
	}
}

func TestPreferencesPartialUpdate(t *testing.T) {
	backend := backendtest.New()
	id, token, _ := backend.SeedUser("ana@example.com", "ana", "secret1")
	client := newClient(t, backend.Start(t), token)
	ctx := context.Background()

	prefs, err := client.GetPreferences(ctx)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if prefs.PreferredLanguage != "en" || prefs.UnitSystem != "metric" || prefs.IsDarkModeEnabled {
		t.Fatalf("unexpected defaults %+v", prefs)
	}

	updated, err := client.UpdatePreferences(ctx, api.PreferencesPatch{IsDarkModeEnabled: api.Ptr(true)})
	if err != nil {
		t.Fatalf("update preferences: %v", err)
	}
	if !updated.IsDarkModeEnabled || updated.PreferredLanguage != "en" {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}
	stored, _ := backend.Preferences(id)
	if !stored.IsDarkModeEnabled {
		t.Fatal("backend did not persist the flag")
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	backend := backendtest.New()
	client := newClient(t, backend.Start(t), "")
	if _, err := client.GetPreferences(context.Background()); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestInjectedFailuresAndTimeouts(t *testing.T) {
	backend := backendtest.New()
	_, token, _ := backend.SeedUser("ana@example.com", "ana", "secret1")
	base := backend.Start(t)
	ctx := context.Background()

	backend.Fail("GET /user/preferences", http.StatusServiceUnavailable)
	client := newClient(t, base, token)
	_, err := client.GetPreferences(ctx)
	if !errors.Is(err, api.ErrServer) {
		t.Fatalf("expected ErrServer, got %v", err)
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusServiceUnavailable || apiErr.Path != "/user/preferences" {
		t.Fatalf("unexpected error detail %#v", err)
	}
	backend.Recover("GET /user/preferences")
	if _, err := client.GetPreferences(ctx); err != nil {
		t.Fatalf("after recover: %v", err)
	}
	if calls := backend.Calls("GET /user/preferences"); calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}

	backend.SetLatency(200 * time.Millisecond)
	slow := newClient(t, base, token, api.WithTimeout(20*time.Millisecond))
	_, err = slow.GetPreferences(ctx)
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestErrorMessageShapes(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"message":"Nope"}`, "Nope"},
		{`{"title":"Validation failed","errors":{"Password":["Too short"],"Email":["Invalid"]}}`, "Invalid; Too short"},
		{`{"title":"Bad Request","detail":"Missing field"}`, "Missing field"},
		{`[{"code":"DuplicateUserName","description":"Taken"}]`, "Taken"},
		{`plain text`, "plain text"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(tc.body))
		}))
		client, _ := api.New(srv.URL)
		_, err := client.GetPreferences(context.Background())
		srv.Close()
		if got := api.MessageOf(err, ""); got != tc.want {
			t.Fatalf("body %s: message = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestTokenSourceErrorsStopTheRequest(t *testing.T) {
	backend := backendtest.New()
	base := backend.Start(t)
	errNoToken := errors.New("keychain locked")
	client, _ := api.New(base, api.WithTokenSource(api.TokenFunc(func(context.Context) (string, error) {
		return "", errNoToken
	})))
	if _, err := client.GetProfile(context.Background()); !errors.Is(err, errNoToken) {
		t.Fatalf("expected token error, got %v", err)
	}
	if backend.Calls("GET /user/profile") != 0 {
		t.Fatal("request should not be sent without a token")
	}
}

func TestPreferencesPatchHelpers(t *testing.T) {
	if !(api.PreferencesPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	patch := api.PreferencesPatch{UnitSystem: api.Ptr("imperial")}
	got := patch.Apply(api.Preferences{PreferredLanguage: "pl", UnitSystem: "metric"})
	if got.UnitSystem != "imperial" || got.PreferredLanguage != "pl" {
		t.Fatalf("unexpected apply result %+v", got)
	}
}
