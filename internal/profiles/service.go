// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package profiles

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tomtom215/dramalog/internal/apperr"
	"github.com/tomtom215/dramalog/internal/gateway"
	"github.com/tomtom215/dramalog/internal/logging"
	"github.com/tomtom215/dramalog/internal/models"
)

// MaxUserNameLength is the longest accepted display name, in characters.
const MaxUserNameLength = 30

// ErrAvatarTooLarge is returned when an avatar exceeds the upload limit.
var ErrAvatarTooLarge = errors.New("avatar exceeds upload limit")

// avatarTypes maps accepted sniffed content types to file extensions.
var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Service manages user profile documents.
type Service struct {
	gw             gateway.Gateway
	maxAvatarBytes int64
	now            func() time.Time
	onChange       []func(userID string)
}

// NewService creates a profile service. maxAvatarBytes <= 0 disables the
// size limit.
func NewService(gw gateway.Gateway, maxAvatarBytes int64) *Service {
	return &Service{gw: gw, maxAvatarBytes: maxAvatarBytes, now: time.Now}
}

// OnChange registers fn to run after a user's display data changes.
// Not safe to call once the service is in use.
func (s *Service) OnChange(fn func(userID string)) {
	s.onChange = append(s.onChange, fn)
}

func (s *Service) changed(userID string) {
	for _, fn := range s.onChange {
		fn(userID)
	}
}

// Get returns the full profile document of a user.
func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, apperr.ErrSignInRequired
	}
	doc, err := s.gw.GetDocument(ctx, gateway.Join(UsersCollection, userID))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperr.NotFound("user", userID)
	}
	user, err := gateway.DecodeAs[models.User](doc)
	if err != nil {
		return nil, err
	}
	if user.DramaList == nil {
		user.DramaList = []string{}
	}
	return user, nil
}

// Create writes a new profile with an empty watchlist.
func (s *Service) Create(ctx context.Context, userID, email, userName string) (*models.User, error) {
	name, err := normalizeUserName(userName)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:               userID,
		Email:            email,
		UserName:         name,
		RegistrationDate: s.now().UnixMilli(),
		DramaList:        []string{},
	}
	if err := s.gw.SetDocument(ctx, gateway.Join(UsersCollection, userID), user, false); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("failed to create profile")
		return nil, err
	}
	return user, nil
}

// UpdateUserName sets the display name of a user.
func (s *Service) UpdateUserName(ctx context.Context, userID, userName string) (*models.User, error) {
	if userID == "" {
		return nil, apperr.ErrSignInRequired
	}
	name, err := normalizeUserName(userName)
	if err != nil {
		return nil, err
	}

	if err := s.gw.UpdateDocument(ctx, gateway.Join(UsersCollection, userID), map[string]any{"userName": name}); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, apperr.NotFound("user", userID)
		}
		logging.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("failed to update user name")
		return nil, err
	}
	s.changed(userID)
	return s.Get(ctx, userID)
}

// UploadAvatar stores an image and points the profile at it. The image type
// is detected from content, not from the client's declared type.
func (s *Service) UploadAvatar(ctx context.Context, userID string, r io.Reader) (string, error) {
	if userID == "" {
		return "", apperr.ErrSignInRequired
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]
	if n == 0 {
		return "", apperr.Invalid("avatar", "file is empty")
	}

	contentType := http.DetectContentType(head)
	ext, ok := avatarTypes[contentType]
	if !ok {
		return "", apperr.Invalid("avatar", "unsupported image type %s", contentType)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	if s.maxAvatarBytes > 0 {
		body = &limitReader{r: body, remaining: s.maxAvatarBytes}
	}

	path := gateway.Join("avatars", userID, uuid.NewString()+ext)
	url, err := s.gw.UploadBlob(ctx, path, body)
	if err != nil {
		if errors.Is(err, ErrAvatarTooLarge) {
			return "", apperr.Invalid("avatar", "file exceeds %d bytes", s.maxAvatarBytes)
		}
		logging.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("failed to upload avatar")
		return "", err
	}

	if err := s.gw.UpdateDocument(ctx, gateway.Join(UsersCollection, userID), map[string]any{"avatar": url}); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return "", apperr.NotFound("user", userID)
		}
		return "", err
	}
	s.changed(userID)
	logging.Ctx(ctx).Info().Str("user_id", userID).Str("content_type", contentType).Msg("avatar updated")
	return url, nil
}

func normalizeUserName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid("userName", "user name is required")
	}
	if utf8.RuneCountInString(name) > MaxUserNameLength {
		return "", apperr.Invalid("userName", "user name must be at most %d characters", MaxUserNameLength)
	}
	return name, nil
}

// limitReader fails with ErrAvatarTooLarge once more than remaining bytes
// have been read.
type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrAvatarTooLarge
	}
	return n, err
}
