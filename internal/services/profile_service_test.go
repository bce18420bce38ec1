// internal/services/profile_service_test.go
package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/frima-market/frima-gateway/internal/config"
	"github.com/frima-market/frima-gateway/internal/models"
	"github.com/frima-market/frima-gateway/internal/utils"
)

type fakeVerifier struct {
	tokens map[string]*fbauth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("ID token has invalid signature")
}

func newProfiles(t *testing.T) (*ProfileService, *MemoryProfileStore, *mockSocialBackend) {
	store := NewMemoryProfileStore()
	b := &mockSocialBackend{}
	storage, _ := localStorage(t)
	return NewProfileService(store, b, storage), store, b
}

func TestRegisterCreatesProfileAndBackendUser(t *testing.T) {
	ctx := context.Background()
	svc, store, b := newProfiles(t)
	b.On("Register", mock.Anything, models.UserRegistration{
		UID: "u1", Sex: models.Sex("female"), Nickname: "Hana", Birthyear: 1995, Birthdate: 412,
	}).Return(nil).Once()

	registered, err := svc.IsRegistered(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, registered)

	p, err := svc.Register(ctx, "u1", RegisterProfileRequest{
		Nickname: " Hana ", Bio: "Selling my old gear", Sex: "female", Birthyear: 1995, Birthdate: 412,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hana", p.Nickname)
	assert.False(t, p.CreatedAt.IsZero())

	stored, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Selling my old gear", stored.Bio)

	registered, err = svc.IsRegistered(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestRegisterStopsWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	svc, store, b := newProfiles(t)
	b.On("Register", mock.Anything, mock.Anything).Return(errors.New("409 conflict"))

	_, err := svc.Register(ctx, "u1", RegisterProfileRequest{Nickname: "Hana"})
	require.Error(t, err)

	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProfiles(t)

	first, err := svc.Update(ctx, "u1", UpdateProfileRequest{Nickname: "Hana"})
	require.NoError(t, err)
	created := first.CreatedAt

	second, err := svc.Update(ctx, "u1", UpdateProfileRequest{Nickname: "Hana K", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, created, second.CreatedAt)
	assert.Equal(t, "Hana K", second.Nickname)
}

func TestUploadImageSetsProfileURL(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProfiles(t)

	p, err := svc.UploadImage(ctx, "u1", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Contains(t, p.ProfileImageURL, "/uploads/profile-images/u1/")
}

func TestPublicProfileSources(t *testing.T) {
	ctx := context.Background()
	svc, store, b := newProfiles(t)
	require.NoError(t, store.Save(ctx, &models.Profile{UID: "u1", Nickname: "Hana", Bio: "hi"}))
	b.On("User", mock.Anything, "u2").Return(&models.UserRegistration{UID: "u2", Nickname: "Ken"}, nil)
	b.On("User", mock.Anything, "u3").Return(nil, errors.New("404"))

	p, err := svc.Public(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Hana", p.Nickname)
	b.AssertNotCalled(t, "User", mock.Anything, "u1")

	p, err = svc.Public(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "Ken", p.Nickname)

	_, err = svc.Public(ctx, "u3")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	utils.SetJWTSecret("test-secret")
	profiles, store, _ := newProfiles(t)
	verifier := &fakeVerifier{tokens: map[string]*fbauth.Token{
		"good-token": {UID: "u1", Claims: map[string]interface{}{"email": "hana@example.com"}},
	}}
	svc := NewAuthService(verifier, profiles, config.JWTConfig{AccessTokenTTL: 2})

	resp, err := svc.CreateSession(ctx, &SessionRequest{IDToken: "good-token"})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.UID)
	assert.Equal(t, "hana@example.com", resp.Email)
	assert.Equal(t, 7200, resp.ExpiresIn)
	assert.False(t, resp.Registered)
	assert.Nil(t, resp.Profile)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	require.NoError(t, store.Save(ctx, &models.Profile{UID: "u1", Nickname: "Hana"}))
	me, err := svc.Me(ctx, "u1", "hana@example.com")
	require.NoError(t, err)
	assert.True(t, me.Registered)
}

func TestCreateSessionRejectsBadTokens(t *testing.T) {
	profiles, _, _ := newProfiles(t)
	svc := NewAuthService(&fakeVerifier{}, profiles, config.JWTConfig{AccessTokenTTL: 1})

	_, err := svc.CreateSession(context.Background(), &SessionRequest{IDToken: "forged"})
	assert.ErrorIs(t, err, ErrInvalidIDToken)

	_, err = svc.CreateSession(context.Background(), &SessionRequest{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidIDToken)

	_, err = NewAuthService(nil, profiles, config.JWTConfig{}).CreateSession(context.Background(), &SessionRequest{IDToken: "x"})
	assert.ErrorIs(t, err, ErrIdentityUnavailable)
}
