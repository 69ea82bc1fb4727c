package guide

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bookmytourguide/internal/app/identity"
	domainguide "bookmytourguide/internal/domain/guide"
	domainuser "bookmytourguide/internal/domain/user"
)

var ErrForbidden = errors.New("guide: caller is not allowed to perform this action")

// Uploader is the slice of the object store the profile service needs.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

type Service struct {
	Guides   domainguide.Repository
	Users    domainuser.Repository
	Uploader Uploader
	Logger   *slog.Logger
}

type UpdateProfileParams struct {
	Name            string
	Mobile          string
	DOB             string
	State           string
	Country         string
	Languages       []string
	Experience      string
	Specializations []string
	Description     string
}

type FileUpload struct {
	Reader      io.Reader
	ContentType string
	Filename    string
}

// Profile returns the caller's own guide profile, creating nothing.
func (s *Service) Profile(ctx context.Context, actor identity.Actor) (*domainguide.Guide, error) {
	return s.Guides.ByUserID(ctx, actor.ID)
}

// UpdateProfile updates the caller's profile, creating it on first use.
// Uploaded photo/license files land in the object store under the per-kind
// folders and only their URLs are persisted.
func (s *Service) UpdateProfile(ctx context.Context, actor identity.Actor, params UpdateProfileParams, photo, license *FileUpload) (*domainguide.Guide, error) {
	g, err := s.Guides.ByUserID(ctx, actor.ID)
	if err != nil {
		if !errors.Is(err, domainguide.ErrNotFound) {
			return nil, err
		}
		g, err = domainguide.NewGuide(domainguide.CreateParams{
			ID:        domainguide.ID(uuid.NewString()),
			UserID:    actor.ID,
			Name:      firstNonEmpty(params.Name, actor.Name),
			CreatedAt: time.Now(),
		})
		if err != nil {
			return nil, err
		}
	}

	applyIfSet(&g.Name, params.Name)
	applyIfSet(&g.Mobile, params.Mobile)
	applyIfSet(&g.DOB, params.DOB)
	applyIfSet(&g.State, params.State)
	applyIfSet(&g.Country, params.Country)
	applyIfSet(&g.Experience, params.Experience)
	applyIfSet(&g.Description, params.Description)
	if len(params.Languages) > 0 {
		g.Languages = append([]string(nil), params.Languages...)
	}
	if len(params.Specializations) > 0 {
		g.Specializations = append([]string(nil), params.Specializations...)
	}

	if photo != nil {
		url, err := s.upload(ctx, "guides/photos", g.ID, photo)
		if err != nil {
			return nil, err
		}
		g.PhotoURL = url
	}
	if license != nil {
		url, err := s.upload(ctx, "guides/licenses", g.ID, license)
		if err != nil {
			return nil, err
		}
		g.LicenseURL = url
	}

	g.RefreshCompleteness()
	g.UpdatedAt = time.Now().UTC()
	if err := s.Guides.Save(ctx, g); err != nil {
		return nil, err
	}

	// Keep the core user record aligned with the profile, as the original
	// backend does after a profile update.
	if u, err := s.Users.ByID(ctx, actor.ID); err == nil {
		if g.Name != "" {
			_ = u.SetName(g.Name, time.Now())
		}
		u.Mobile = g.Mobile
		if err := s.Users.Save(ctx, u); err != nil && s.Logger != nil {
			s.Logger.Warn("user sync after profile update failed", "user_id", actor.ID, "error", err)
		}
	}
	return g, nil
}

// SetApproval is the admin approve/reject action.
func (s *Service) SetApproval(ctx context.Context, actor identity.Actor, id domainguide.ID, status domainguide.ApprovalStatus) (*domainguide.Guide, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	g, err := s.Guides.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.SetApproval(status, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Guides.Save(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListApproved is the public directory of bookable guides.
func (s *Service) ListApproved(ctx context.Context) ([]*domainguide.Guide, error) {
	return s.Guides.ListApproved(ctx)
}

func (s *Service) ByID(ctx context.Context, id domainguide.ID) (*domainguide.Guide, error) {
	return s.Guides.ByID(ctx, id)
}

func (s *Service) upload(ctx context.Context, folder string, id domainguide.ID, file *FileUpload) (string, error) {
	if s.Uploader == nil {
		return "", errors.New("guide: uploader not configured")
	}
	key := fmt.Sprintf("%s/%s-%s", folder, id, file.Filename)
	return s.Uploader.Upload(ctx, key, file.Reader, file.ContentType)
}

func applyIfSet(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
