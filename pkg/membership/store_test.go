package membership

import (
	"context"
	"testing"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAddGetDismiss(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	s.Create("g1")
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "u1", Role: types.RoleOwner}))

	m, ok, err := s.GetMember("g1", "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.RoleOwner, m.Role)

	count, err := s.GetMemberCount("g1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	s.Dismiss("g1")
	_, _, err = s.GetMember("g1", "u1")
	assert.Error(t, err)
}

func TestStore_AddMemberCreatesGroupImplicitly(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.AddMember(ctx, "new-group", types.MemberRef{UID: "u1"}))
	count, err := s.GetMemberCount("new-group")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_RemoveMemberUnknownGroup(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	err := s.RemoveMember(ctx, "ghost", "u1")
	require.Error(t, err)
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestStore_ChangeRoleRejectsOwner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "owner", Role: types.RoleOwner}))

	err := s.ChangeRole(ctx, "g1", "owner", types.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, errs.InvalidTransition, errs.KindOf(err))

	err = s.ChangeRole(ctx, "g1", "owner", types.RoleOwner)
	require.Error(t, err)
	assert.Equal(t, errs.InvalidTransition, errs.KindOf(err))
}

func TestStore_TransferOwnership(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "owner", Role: types.RoleOwner}))
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "admin", Role: types.RoleMember}))

	require.NoError(t, s.TransferOwnership(ctx, "g1", "owner", "admin"))

	oldOwner, _, err := s.GetMember("g1", "owner")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, oldOwner.Role)

	newOwner, _, err := s.GetMember("g1", "admin")
	require.NoError(t, err)
	assert.Equal(t, types.RoleOwner, newOwner.Role)
}

func TestStore_TransferOwnershipRejectsNonOwner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "u1", Role: types.RoleMember}))
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "u2", Role: types.RoleMember}))

	err := s.TransferOwnership(ctx, "g1", "u1", "u2")
	require.Error(t, err)
	assert.Equal(t, errs.InvalidTransition, errs.KindOf(err))
}

func TestStore_GetUserGroups(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "u1"}))
	require.NoError(t, s.AddMember(ctx, "g2", types.MemberRef{UID: "u1"}))
	require.NoError(t, s.AddMember(ctx, "g3", types.MemberRef{UID: "other"}))

	groups := s.GetUserGroups("u1", 0)
	assert.ElementsMatch(t, []string{"g1", "g2"}, groups)
}

func TestStore_SyncDataAddsAndMarksOnline(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	members := []types.MemberRef{{UID: "u1"}, {UID: "u2"}}

	require.NoError(t, s.SyncData(ctx, "g1", members, []string{"u1"}))

	count, err := s.GetMemberCount("g1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	online, err := s.GetOnlineIDs("g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, online)
}

func TestStore_GroupAndMemberCounts(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "u1"}))
	require.NoError(t, s.AddMember(ctx, "g1", types.MemberRef{UID: "u2"}))
	require.NoError(t, s.AddMember(ctx, "g2", types.MemberRef{UID: "u3"}))

	assert.Equal(t, 2, s.GroupCount())
	assert.Equal(t, 3, s.MemberCount())
}

func TestStore_GroupIDs(t *testing.T) {
	s := NewStore()
	s.Create("g1")
	s.Create("g2")
	assert.ElementsMatch(t, []string{"g1", "g2"}, s.GroupIDs())
}
