package service

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"armario-outfits/apperr"
	"armario-outfits/repository"
)

// ProfileService manages the profile picture shown as the canvas profile layer
type ProfileService struct {
	users   repository.UserRepositoryInterface
	storage Storage
}

// NewProfileService creates a new ProfileService
func NewProfileService(users repository.UserRepositoryInterface, storage Storage) *ProfileService {
	return &ProfileService{users: users, storage: storage}
}

// SetPicture stores a new profile picture and removes the previous one
func (s *ProfileService) SetPicture(ctx context.Context, uid string, photo []byte) (string, error) {
	if len(photo) == 0 {
		return "", apperr.New(apperr.CodeInvalidInput, "photo is required")
	}
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return "", err
	}

	img, err := DecodeImage(photo)
	if err != nil {
		return "", err
	}
	data, contentType, ext, err := PrepareLayerImage(img)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("profiles/%s/%s%s", uid, uuid.NewString(), ext)
	url, err := s.storage.Upload(ctx, path, data, contentType)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUploadFailed, err, "failed to store profile picture")
	}
	if err := s.users.SetProfileImage(ctx, uid, url); err != nil {
		if derr := s.storage.Delete(context.WithoutCancel(ctx), path); derr != nil {
			log.Errorf("❌ Failed to remove orphaned profile picture %s: %v", path, derr)
		}
		return "", err
	}

	if old := user.ProfileImageURL; old != "" && old != url {
		if err := s.storage.DeleteURL(ctx, old); err != nil {
			log.Warnf("⚠️  Failed to delete previous profile picture: %v", err)
		}
	}

	log.Infof("✅ Profile picture set for %s", uid)
	return url, nil
}
