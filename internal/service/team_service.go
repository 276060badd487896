package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/repository"
	"drpworkshop/server/internal/storage"
)

var ErrUserNotFound = errors.New("user not found")

// Profile is the outward view of a user: no credentials, avatar resolved to
// a temporary download URL.
type Profile struct {
	ID          primitive.ObjectID `json:"id"`
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	FirstName   string             `json:"firstName,omitempty"`
	LastName    string             `json:"lastName,omitempty"`
	DisplayName string             `json:"displayName"`
	Role        domain.Role        `json:"role"`
	PhoneNumber string             `json:"phoneNumber,omitempty"`
	AvatarURL   string             `json:"avatarUrl,omitempty"`
}

// UpdateProfileInput holds the editable profile fields. Nil pointers leave
// the stored value untouched.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// AvatarUpload pairs a presigned upload URL with the object key that becomes
// the user's avatar once confirmed.
type AvatarUpload struct {
	ObjectKey string `json:"objectKey"`
	UploadURL string `json:"uploadUrl"`
}

// --- Service Interface ---

// TeamService exposes the user directory and profile management.
type TeamService interface {
	ListMembers(ctx context.Context) ([]Profile, error)
	ListAthletes(ctx context.Context) ([]Profile, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, input UpdateProfileInput) (*Profile, error)
	PrepareAvatarUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*AvatarUpload, error)
	ConfirmAvatar(ctx context.Context, userID primitive.ObjectID, objectKey string) (*Profile, error)
}

// --- Service Implementation ---

type teamService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// NewTeamService creates a new instance of teamService.
func NewTeamService(userRepo repository.UserRepository, fileStorage storage.FileStorage) TeamService {
	return &teamService{userRepo: userRepo, fileStorage: fileStorage}
}

// ListMembers returns every registered user as a profile. The roster is the
// whole platform; pros pick athletes and chat partners from it.
func (s *teamService) ListMembers(ctx context.Context) ([]Profile, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.profiles(ctx, users)
}

// ListAthletes returns only athlete profiles, the assignable targets for a
// SweatSheet.
func (s *teamService) ListAthletes(ctx context.Context) ([]Profile, error) {
	users, err := s.userRepo.ListByRole(ctx, domain.RoleAthlete)
	if err != nil {
		return nil, err
	}
	return s.profiles(ctx, users)
}

func (s *teamService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.profile(ctx, user)
}

// UpdateProfile applies the provided fields and returns the fresh profile.
func (s *teamService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, input UpdateProfileInput) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.profile(ctx, user)
}

// PrepareAvatarUpload mints an object key and presigned PUT URL for a new
// avatar image.
func (s *teamService) PrepareAvatarUpload(ctx context.Context, userID primitive.ObjectID, contentType string) (*AvatarUpload, error) {
	objectKey := fmt.Sprintf("%s%s/%s", storage.AvatarKeyPrefix, userID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &AvatarUpload{ObjectKey: objectKey, UploadURL: uploadURL}, nil
}

// ConfirmAvatar records the uploaded object as the user's avatar and deletes
// the previous one from storage.
func (s *teamService) ConfirmAvatar(ctx context.Context, userID primitive.ObjectID, objectKey string) (*Profile, error) {
	if objectKey == "" {
		return nil, errors.New("avatar object key cannot be empty")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	previous := user.AvatarKey
	user.AvatarKey = objectKey
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if previous != "" && previous != objectKey {
		// Best effort; an orphaned object is not worth failing the update.
		_ = s.fileStorage.DeleteObject(ctx, previous)
	}
	return s.profile(ctx, user)
}

// --- Helpers ---

func (s *teamService) profiles(ctx context.Context, users []domain.User) ([]Profile, error) {
	out := make([]Profile, 0, len(users))
	for i := range users {
		p, err := s.profile(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *teamService) profile(ctx context.Context, user *domain.User) (*Profile, error) {
	p := &Profile{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DisplayName(),
		Role:        user.Role,
		PhoneNumber: user.PhoneNumber,
	}
	if user.AvatarKey != "" {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, user.AvatarKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, err
		}
		p.AvatarURL = url
	}
	return p, nil
}
