package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"drpworkshop/server/internal/domain"
)

func newTeamFixture(t *testing.T) (TeamService, *fakeUserRepo, *fakeFileStorage) {
	t.Helper()
	users := newFakeUserRepo()
	files := &fakeFileStorage{}
	return NewTeamService(users, files), users, files
}

func TestListMembersAndAthletes(t *testing.T) {
	svc, users, _ := newTeamFixture(t)
	ctx := context.Background()

	_, err := users.Create(ctx, &domain.User{Username: "coach", Email: "c@example.com", Role: domain.RolePro})
	require.NoError(t, err)
	_, err = users.Create(ctx, &domain.User{Username: "runner", Email: "r@example.com", Role: domain.RoleAthlete})
	require.NoError(t, err)

	members, err := svc.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)

	athletes, err := svc.ListAthletes(ctx)
	require.NoError(t, err)
	require.Len(t, athletes, 1)
	require.Equal(t, "runner", athletes[0].Username)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	svc, users, _ := newTeamFixture(t)
	ctx := context.Background()

	id, err := users.Create(ctx, &domain.User{Username: "coach", Email: "c@example.com", FirstName: "Jordan", Role: domain.RolePro})
	require.NoError(t, err)

	phone := "+44 7700 900123"
	profile, err := svc.UpdateProfile(ctx, id, UpdateProfileInput{PhoneNumber: &phone})
	require.NoError(t, err)
	require.Equal(t, phone, profile.PhoneNumber)
	require.Equal(t, "Jordan", profile.FirstName) // untouched

	last := "Reyes"
	profile, err = svc.UpdateProfile(ctx, id, UpdateProfileInput{LastName: &last})
	require.NoError(t, err)
	require.Equal(t, "Jordan Reyes", profile.DisplayName)
}

func TestAvatarLifecycle(t *testing.T) {
	svc, users, files := newTeamFixture(t)
	ctx := context.Background()

	id, err := users.Create(ctx, &domain.User{Username: "coach", Email: "c@example.com", Role: domain.RolePro})
	require.NoError(t, err)

	upload, err := svc.PrepareAvatarUpload(ctx, id, "image/jpeg")
	require.NoError(t, err)
	require.NotEmpty(t, upload.UploadURL)

	profile, err := svc.ConfirmAvatar(ctx, id, upload.ObjectKey)
	require.NoError(t, err)
	require.Contains(t, profile.AvatarURL, upload.ObjectKey)

	// Replacing the avatar deletes the previous object.
	second, err := svc.PrepareAvatarUpload(ctx, id, "image/jpeg")
	require.NoError(t, err)
	_, err = svc.ConfirmAvatar(ctx, id, second.ObjectKey)
	require.NoError(t, err)
	require.Equal(t, []string{upload.ObjectKey}, files.deleted)
}
