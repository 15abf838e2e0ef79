package fanout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupshard/groupshard/api/proto"
	"github.com/groupshard/groupshard/pkg/shard"
	"github.com/groupshard/groupshard/pkg/types"
)

// fakeUserService backs the Dispatcher's MsgCreateGroup/MsgChangeGroup
// lookups in tests, without a real user service.
type fakeUserService struct {
	members map[string][]types.MemberRef
	online  map[string][]string
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{members: make(map[string][]types.MemberRef), online: make(map[string][]string)}
}

func (u *fakeUserService) GroupsOwnedBy(ctx context.Context, index, total int) ([]string, error) {
	return nil, nil
}

func (u *fakeUserService) MembersOf(ctx context.Context, groupID string) ([]types.MemberRef, []string, error) {
	return u.members[groupID], u.online[groupID], nil
}

func TestDispatch_CreateAddOnline(t *testing.T) {
	node := shard.NewNode("shard-0")
	d := NewDispatcher(node, newFakeUserService())
	ctx := context.Background()

	raw, err := encodeOnly(proto.CreateGroupMsg{GroupID: "g1"})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, types.MsgCreateGroup, raw))

	raw, err = encodeOnly(proto.AddMemberMsg{GroupID: "g1", Member: types.MemberRef{UID: "u1", Role: types.RoleOwner}})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, types.MsgAddMember, raw))

	raw, err = encodeOnly(proto.MemberOnlineMsg{GroupID: "g1", UID: "u1"})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, types.MsgMemberOnline, raw))

	count, err := node.Current().GetOnlineCount("g1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDispatch_CreateGroupLoadsMembersFromUserService(t *testing.T) {
	node := shard.NewNode("shard-0")
	userSvc := newFakeUserService()
	userSvc.members["g1"] = []types.MemberRef{{UID: "u1", Role: types.RoleOwner}, {UID: "u2", Role: types.RoleMember}}
	userSvc.online["g1"] = []string{"u2"}
	d := NewDispatcher(node, userSvc)
	ctx := context.Background()

	raw, err := encodeOnly(proto.CreateGroupMsg{GroupID: "g1"})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, types.MsgCreateGroup, raw))

	count, err := node.Current().GetMemberCount("g1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	online, err := node.Current().GetOnlineCount("g1")
	require.NoError(t, err)
	assert.Equal(t, 1, online)
}

func TestDispatch_ChangeGroupReloadsMembersFromUserService(t *testing.T) {
	node := shard.NewNode("shard-0")
	userSvc := newFakeUserService()
	userSvc.members["g1"] = []types.MemberRef{{UID: "u3", Role: types.RoleMember}}
	d := NewDispatcher(node, userSvc)
	ctx := context.Background()

	raw, err := encodeOnly(proto.ChangeGroupMsg{GroupID: "g1"})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, types.MsgChangeGroup, raw))

	member, found, err := node.Current().GetMember("g1", "u3")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, types.RoleMember, member.Role)
}

func TestDispatch_RemoveMembers(t *testing.T) {
	node := shard.NewNode("shard-0")
	d := NewDispatcher(node, newFakeUserService())
	ctx := context.Background()
	node.Current().Create("g1")
	require.NoError(t, node.Current().AddMembers(ctx, "g1", []types.MemberRef{{UID: "a"}, {UID: "b"}}))

	raw, err := encodeOnly(proto.RemoveMembersMsg{GroupID: "g1", UIDs: []string{"a"}})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, types.MsgRemoveMembers, raw))

	count, err := node.Current().GetMemberCount("g1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDispatch_UnknownTypeErrors(t *testing.T) {
	node := shard.NewNode("shard-0")
	d := NewDispatcher(node, newFakeUserService())
	err := d.Dispatch(context.Background(), types.GroupNodeMsgType(99), []byte("{}"))
	assert.Error(t, err)
}

func TestDispatch_MuteIsNoOp(t *testing.T) {
	node := shard.NewNode("shard-0")
	d := NewDispatcher(node, newFakeUserService())
	raw, err := encodeOnly(proto.MuteMsg{GroupID: "g1", UID: "u1"})
	require.NoError(t, err)
	assert.NoError(t, d.Dispatch(context.Background(), types.MsgMute, raw))
}

func TestDispatch_FollowsNodeAcrossMigrationSwap(t *testing.T) {
	node := shard.NewNode("shard-0")
	d := NewDispatcher(node, newFakeUserService())
	ctx := context.Background()
	node.Current().Create("g1")
	require.NoError(t, node.Current().AddMember(ctx, "g1", types.MemberRef{UID: "u1"}))

	// BeginMigration swaps in a fresh empty store as current; a dispatcher
	// holding a cached *membership.Store from before the swap would still
	// be mutating the discarded one.
	node.BeginMigration()

	raw, err := encodeOnly(proto.AddMembersMsg{GroupID: "g2", Members: []types.MemberRef{{UID: "u2"}}})
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(ctx, types.MsgAddMembers, raw))

	count, err := node.Current().GetMemberCount("g2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func encodeOnly(payload interface{}) ([]byte, error) {
	full, err := Encode(types.MsgCreateGroup, payload)
	if err != nil {
		return nil, err
	}
	return full[1:], nil
}
