// internal/services/profile_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/frima-market/frima-gateway/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore holds the users/{uid} documents.
type ProfileStore interface {
	Get(ctx context.Context, uid string) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
}

const usersCollection = "users"

type FirestoreProfileStore struct {
	client *firestore.Client
}

func NewFirestoreProfileStore(client *firestore.Client) *FirestoreProfileStore {
	return &FirestoreProfileStore{client: client}
}

func (s *FirestoreProfileStore) Get(ctx context.Context, uid string) (*models.Profile, error) {
	snap, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p models.Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	p.UID = uid
	return &p, nil
}

// Save merges the profile fields into the document, creating it if needed.
func (s *FirestoreProfileStore) Save(ctx context.Context, p *models.Profile) error {
	_, err := s.client.Collection(usersCollection).Doc(p.UID).Set(ctx, map[string]interface{}{
		"uid":             p.UID,
		"nickname":        p.Nickname,
		"bio":             p.Bio,
		"profileImageUrl": p.ProfileImageURL,
		"createdAt":       p.CreatedAt,
		"updatedAt":       p.UpdatedAt,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]models.Profile)}
}

func (s *MemoryProfileStore) Get(_ context.Context, uid string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[uid]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (s *MemoryProfileStore) Save(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UID] = *p
	return nil
}

type RegisterProfileRequest struct {
	Nickname  string     `json:"nickname" validate:"required,max=50"`
	Bio       string     `json:"bio" validate:"max=500"`
	Sex       models.Sex `json:"sex" validate:"omitempty,oneof=male female other unspecified"`
	Birthyear int        `json:"birthyear" validate:"omitempty,min=1900,max=2100"`
	Birthdate int        `json:"birthdate" validate:"omitempty,min=101,max=1231"`
}

type UpdateProfileRequest struct {
	Nickname string `json:"nickname" validate:"required,max=50"`
	Bio      string `json:"bio" validate:"max=500"`
}

// PublicProfile is what other users see.
type PublicProfile struct {
	UID             string `json:"uid"`
	Nickname        string `json:"nickname"`
	Bio             string `json:"bio"`
	ProfileImageURL string `json:"profile_image_url"`
}

type ProfileService struct {
	store   ProfileStore
	backend SocialBackend
	storage *StorageService
	log     *logrus.Entry
}

func NewProfileService(store ProfileStore, b SocialBackend, storage *StorageService) *ProfileService {
	return &ProfileService{
		store:   store,
		backend: b,
		storage: storage,
		log:     logrus.WithField("component", "profiles"),
	}
}

func (s *ProfileService) Get(ctx context.Context, uid string) (*models.Profile, error) {
	return s.store.Get(ctx, uid)
}

// IsRegistered is the registration gate: the profile document exists and
// carries a nickname.
func (s *ProfileService) IsRegistered(ctx context.Context, uid string) (bool, error) {
	p, err := s.store.Get(ctx, uid)
	if errors.Is(err, ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.IsComplete(), nil
}

// Register completes sign-up: the profile document plus the backend's
// basic user record.
func (s *ProfileService) Register(ctx context.Context, uid string, req RegisterProfileRequest) (*models.Profile, error) {
	if err := s.backend.Register(ctx, models.UserRegistration{
		UID:       uid,
		Sex:       req.Sex,
		Nickname:  strings.TrimSpace(req.Nickname),
		Birthyear: req.Birthyear,
		Birthdate: req.Birthdate,
	}); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return s.upsert(ctx, uid, func(p *models.Profile) {
		p.Nickname = strings.TrimSpace(req.Nickname)
		p.Bio = req.Bio
	})
}

func (s *ProfileService) Update(ctx context.Context, uid string, req UpdateProfileRequest) (*models.Profile, error) {
	return s.upsert(ctx, uid, func(p *models.Profile) {
		p.Nickname = strings.TrimSpace(req.Nickname)
		p.Bio = req.Bio
	})
}

func (s *ProfileService) UploadImage(ctx context.Context, uid string, content io.Reader) (*models.Profile, error) {
	result, err := s.storage.UploadProfileImage(uid, content)
	if err != nil {
		return nil, err
	}
	return s.upsert(ctx, uid, func(p *models.Profile) {
		p.ProfileImageURL = result.URL
	})
}

// Public merges the profile document with the backend's user record. Either
// source alone is enough.
func (s *ProfileService) Public(ctx context.Context, uid string) (*PublicProfile, error) {
	out := &PublicProfile{UID: uid}
	found := false

	if p, err := s.store.Get(ctx, uid); err == nil {
		out.Nickname = p.Nickname
		out.Bio = p.Bio
		out.ProfileImageURL = p.ProfileImageURL
		found = true
	} else if !errors.Is(err, ErrProfileNotFound) {
		s.log.WithError(err).WithField("uid", uid).Warn("Profile document unavailable")
	}

	if out.Nickname == "" {
		if u, err := s.backend.User(ctx, uid); err == nil {
			out.Nickname = u.Nickname
			found = true
		}
	}

	if !found {
		return nil, ErrProfileNotFound
	}
	return out, nil
}

func (s *ProfileService) upsert(ctx context.Context, uid string, apply func(p *models.Profile)) (*models.Profile, error) {
	now := time.Now().UTC()
	p, err := s.store.Get(ctx, uid)
	if errors.Is(err, ErrProfileNotFound) {
		p = &models.Profile{UID: uid, CreatedAt: now}
	} else if err != nil {
		return nil, err
	}

	apply(p)
	p.UpdatedAt = now
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
