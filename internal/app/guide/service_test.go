package guide

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookmytourguide/internal/app/identity"
	domainguide "bookmytourguide/internal/domain/guide"
	domainuser "bookmytourguide/internal/domain/user"
	"bookmytourguide/internal/infra/storage/memory"
)

type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, key string, reader io.Reader, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, reader)
	f.keys = append(f.keys, key)
	return "https://assets.test/" + key, nil
}

func newGuideFixture(t *testing.T) (*Service, *memory.GuideRepository, *memory.UserRepository, *fakeUploader) {
	t.Helper()
	guides := memory.NewGuideRepository()
	users := memory.NewUserRepository()
	uploader := &fakeUploader{}
	svc := &Service{Guides: guides, Users: users, Uploader: uploader}
	return svc, guides, users, uploader
}

func seedUser(t *testing.T, users *memory.UserRepository, id, name string) identity.Actor {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@example.com",
		Name:         name,
		PasswordHash: "x",
		Role:         domainuser.RoleGuide,
	})
	require.NoError(t, err)
	require.NoError(t, users.Save(context.Background(), u))
	return identity.Actor{ID: u.ID, Role: u.Role, Name: u.Name}
}

func TestUpdateProfileCreatesOnFirstUse(t *testing.T) {
	svc, guides, users, _ := newGuideFixture(t)
	actor := seedUser(t, users, "u-1", "Asha")

	g, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileParams{
		Mobile:    "9000000001",
		Country:   "India",
		Languages: []string{"Malayalam", "English"},
	}, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, actor.ID, g.UserID)
	assert.Equal(t, "Asha", g.Name, "name falls back to the account name")
	assert.Equal(t, domainguide.ApprovalPending, g.Approval)
	assert.False(t, g.ProfileComplete, "no photo yet")

	stored, err := guides.ByUserID(context.Background(), actor.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, stored.ID)
}

func TestUpdateProfileUploadsPhotoAndLicense(t *testing.T) {
	svc, _, users, uploader := newGuideFixture(t)
	actor := seedUser(t, users, "u-1", "Asha")

	photo := &FileUpload{Reader: strings.NewReader("jpeg"), ContentType: "image/jpeg", Filename: "face.jpg"}
	license := &FileUpload{Reader: strings.NewReader("pdf"), ContentType: "application/pdf", Filename: "license.pdf"}
	g, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileParams{
		Mobile:     "9000000001",
		DOB:        "1990-04-02",
		Country:    "India",
		Languages:  []string{"Hindi"},
		Experience: "8 years",
	}, photo, license)
	require.NoError(t, err)

	require.Len(t, uploader.keys, 2)
	assert.True(t, strings.HasPrefix(uploader.keys[0], "guides/photos/"), "photo key %q", uploader.keys[0])
	assert.True(t, strings.HasPrefix(uploader.keys[1], "guides/licenses/"), "license key %q", uploader.keys[1])
	assert.True(t, strings.HasSuffix(g.PhotoURL, "face.jpg"))
	assert.True(t, strings.HasSuffix(g.LicenseURL, "license.pdf"))
	assert.True(t, g.ProfileComplete, "all completeness fields are set")
}

func TestUpdateProfileUploadFailureLeavesNothing(t *testing.T) {
	svc, guides, users, uploader := newGuideFixture(t)
	actor := seedUser(t, users, "u-1", "Asha")
	uploader.err = errors.New("bucket unreachable")

	photo := &FileUpload{Reader: strings.NewReader("jpeg"), ContentType: "image/jpeg", Filename: "face.jpg"}
	_, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileParams{Mobile: "9000000001"}, photo, nil)
	require.Error(t, err)

	_, err = guides.ByUserID(context.Background(), actor.ID)
	assert.ErrorIs(t, err, domainguide.ErrNotFound)
}

func TestUpdateProfileSyncsUserRecord(t *testing.T) {
	svc, _, users, _ := newGuideFixture(t)
	actor := seedUser(t, users, "u-1", "Asha")

	_, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileParams{
		Name:   "Asha K",
		Mobile: "9000000001",
	}, nil, nil)
	require.NoError(t, err)

	u, err := users.ByID(context.Background(), actor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", u.Name)
	assert.Equal(t, "9000000001", u.Mobile)
}

func TestUpdateProfileKeepsRacingReservation(t *testing.T) {
	svc, guides, users, _ := newGuideFixture(t)
	actor := seedUser(t, users, "u-1", "Asha")
	ctx := context.Background()

	g, err := svc.UpdateProfile(ctx, actor, UpdateProfileParams{Mobile: "9000000001"}, nil, nil)
	require.NoError(t, err)

	// a booking lands between the profile load and the profile save
	days := []time.Time{
		time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, guides.ReserveDates(ctx, g.ID, days))

	_, err = svc.UpdateProfile(ctx, actor, UpdateProfileParams{Description: "Kerala specialist"}, nil, nil)
	require.NoError(t, err)

	stored, err := guides.ByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kerala specialist", stored.Description)
	assert.Len(t, stored.UnavailableDates, 2, "a profile save must never overwrite the reservation ledger")
}

func TestSetApprovalRequiresAdmin(t *testing.T) {
	svc, guides, users, _ := newGuideFixture(t)
	actor := seedUser(t, users, "u-1", "Asha")
	g, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileParams{}, nil, nil)
	require.NoError(t, err)

	_, err = svc.SetApproval(context.Background(), actor, g.ID, domainguide.ApprovalApproved)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := identity.Actor{ID: "a-1", Role: domainuser.RoleAdmin, Name: "Admin"}
	approved, err := svc.SetApproval(context.Background(), admin, g.ID, domainguide.ApprovalApproved)
	require.NoError(t, err)
	assert.Equal(t, domainguide.ApprovalApproved, approved.Approval)

	listed, err := svc.ListApproved(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, g.ID, listed[0].ID)

	stored, err := guides.ByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), stored.UpdatedAt, time.Minute)
}

func TestSetApprovalRejectsUnknownStatus(t *testing.T) {
	svc, _, users, _ := newGuideFixture(t)
	actor := seedUser(t, users, "u-1", "Asha")
	g, err := svc.UpdateProfile(context.Background(), actor, UpdateProfileParams{}, nil, nil)
	require.NoError(t, err)

	admin := identity.Actor{ID: "a-1", Role: domainuser.RoleAdmin, Name: "Admin"}
	_, err = svc.SetApproval(context.Background(), admin, g.ID, domainguide.ApprovalStatus("maybe"))
	assert.ErrorIs(t, err, domainguide.ErrInvalidStatus)
}
