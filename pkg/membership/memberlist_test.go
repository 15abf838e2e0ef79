package membership

import (
	"fmt"
	"testing"

	"github.com/groupshard/groupshard/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberList_AddGetRemove(t *testing.T) {
	ml := NewMemberList()
	require.NoError(t, ml.Add(types.MemberRef{UID: "u1", Role: types.RoleMember}))

	m, ok := ml.Get("u1")
	require.True(t, ok)
	assert.Equal(t, types.RoleMember, m.Role)

	require.NoError(t, ml.Remove("u1"))
	_, ok = ml.Get("u1")
	assert.False(t, ok)
}

func TestMemberList_AddIsIdempotent(t *testing.T) {
	ml := NewMemberList()
	require.NoError(t, ml.Add(types.MemberRef{UID: "u1", Role: types.RoleMember}))
	require.NoError(t, ml.Add(types.MemberRef{UID: "u1", Role: types.RoleAdmin}))

	m, ok := ml.Get("u1")
	require.True(t, ok)
	assert.Equal(t, types.RoleMember, m.Role, "re-adding an existing uid must not change its role")
	assert.Equal(t, 1, ml.Len())
}

func TestMemberList_SetOnlineRequiresMembership(t *testing.T) {
	ml := NewMemberList()
	require.NoError(t, ml.SetOnline("ghost", true))
	assert.Equal(t, 0, ml.OnlineCount(), "setting a non-member online must be a no-op")

	require.NoError(t, ml.Add(types.MemberRef{UID: "u1"}))
	require.NoError(t, ml.SetOnline("u1", true))
	assert.Equal(t, 1, ml.OnlineCount())
	assert.Contains(t, ml.OnlineIDs(), "u1")
}

func TestMemberList_RemoveDropsOnlineStatus(t *testing.T) {
	ml := NewMemberList()
	require.NoError(t, ml.Add(types.MemberRef{UID: "u1"}))
	require.NoError(t, ml.SetOnline("u1", true))
	require.NoError(t, ml.Remove("u1"))
	assert.Equal(t, 0, ml.OnlineCount())
}

func TestMemberList_PromotesToShardedPastThreshold(t *testing.T) {
	ml := NewMemberList()
	members := make([]types.MemberRef, 0, itemsPerShard+hysteresisDelta+1)
	for i := 0; i < itemsPerShard+hysteresisDelta+1; i++ {
		members = append(members, types.MemberRef{UID: fmt.Sprintf("u%d", i)})
	}
	require.NoError(t, ml.AddMany(members))

	assert.Equal(t, len(members), ml.Len())
	state := ml.state.Load()
	require.NotNil(t, state.sharded, "list must have promoted to sharded representation")
	assert.Equal(t, uint64(1), ml.Epoch())
}

func TestMemberList_StaysFlatBelowThreshold(t *testing.T) {
	ml := NewMemberList()
	members := make([]types.MemberRef, 0, itemsPerShard)
	for i := 0; i < itemsPerShard; i++ {
		members = append(members, types.MemberRef{UID: fmt.Sprintf("u%d", i)})
	}
	require.NoError(t, ml.AddMany(members))

	state := ml.state.Load()
	assert.NotNil(t, state.flat)
	assert.Equal(t, uint64(0), ml.Epoch())
}

func TestMemberList_DemotesBackToFlat(t *testing.T) {
	ml := NewMemberList()
	total := itemsPerShard + hysteresisDelta + 1
	members := make([]types.MemberRef, 0, total)
	for i := 0; i < total; i++ {
		members = append(members, types.MemberRef{UID: fmt.Sprintf("u%d", i)})
	}
	require.NoError(t, ml.AddMany(members))
	require.NotNil(t, ml.state.Load().sharded)

	// Drop back down well below the single-shard demotion floor.
	for i := 0; i < total-100; i++ {
		require.NoError(t, ml.Remove(fmt.Sprintf("u%d", i)))
	}

	state := ml.state.Load()
	assert.NotNil(t, state.flat, "list must have demoted back to flat once small enough")
	assert.True(t, ml.Epoch() >= 2, "both promotion and demotion must bump the epoch")
}

func TestMemberList_ShardedPreservesAllMembersAndOnlineSet(t *testing.T) {
	ml := NewMemberList()
	total := itemsPerShard + hysteresisDelta + 1
	for i := 0; i < total; i++ {
		require.NoError(t, ml.Add(types.MemberRef{UID: fmt.Sprintf("u%d", i)}))
	}
	require.NoError(t, ml.SetOnline("u0", true))
	require.NoError(t, ml.SetOnline(fmt.Sprintf("u%d", total-1), true))

	assert.Equal(t, total, ml.Len())
	assert.Equal(t, 2, ml.OnlineCount())
	m, ok := ml.Get("u0")
	require.True(t, ok)
	assert.Equal(t, "u0", m.UID)
}

func TestMemberList_GetPageIsInsertionOrderedWhenFlat(t *testing.T) {
	ml := NewMemberList()
	require.NoError(t, ml.Add(types.MemberRef{UID: "c"}))
	require.NoError(t, ml.Add(types.MemberRef{UID: "a"}))
	require.NoError(t, ml.Add(types.MemberRef{UID: "b"}))

	page := ml.GetPage(0, 10)
	require.Len(t, page, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{page[0].UID, page[1].UID, page[2].UID})
}

func TestMemberList_Clear(t *testing.T) {
	ml := NewMemberList()
	require.NoError(t, ml.Add(types.MemberRef{UID: "u1"}))
	epochBefore := ml.Epoch()
	ml.Clear()
	assert.Equal(t, 0, ml.Len())
	assert.Greater(t, ml.Epoch(), epochBefore)
}

func TestMemberList_ChangeRole(t *testing.T) {
	ml := NewMemberList()
	require.NoError(t, ml.Add(types.MemberRef{UID: "u1", Role: types.RoleMember}))
	require.NoError(t, ml.ChangeRole("u1", types.RoleAdmin))
	m, _ := ml.Get("u1")
	assert.Equal(t, types.RoleAdmin, m.Role)
}

func TestMemberList_Admins(t *testing.T) {
	ml := NewMemberList()
	require.NoError(t, ml.AddMany([]types.MemberRef{
		{UID: "owner", Role: types.RoleOwner},
		{UID: "admin", Role: types.RoleAdmin},
		{UID: "member", Role: types.RoleMember},
	}))
	admins := ml.Admins()
	assert.ElementsMatch(t, []string{"owner", "admin"}, admins)
}
