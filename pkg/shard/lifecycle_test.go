package shard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupshard/groupshard/pkg/types"
)

func TestLifecycleRunner_StartAdvancesToNormal(t *testing.T) {
	arb := newFakeArbiter(1)
	node := NewNode("shard-0:9000")
	reg := newFakePeerRegistry()
	runner := NewLifecycleRunner(node, arb, reg.dialer(), &fakeUserService{}, "kafka:9092")

	err := runner.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.StateNormal, node.State())

	runner.Stop()
}

func TestLifecycleRunner_ShutdownReachesOffline(t *testing.T) {
	arb := newFakeArbiter(1)
	node := NewNode("shard-0:9000")
	reg := newFakePeerRegistry()
	runner := NewLifecycleRunner(node, arb, reg.dialer(), &fakeUserService{}, "kafka:9092")

	require.NoError(t, runner.Start(context.Background()))
	require.NoError(t, runner.Shutdown(context.Background()))
	assert.Equal(t, types.StateOffline, node.State())
}

func TestLifecycleRunner_FirstTransitionFailurePropagates(t *testing.T) {
	node := NewNode("shard-0:9000")
	reg := newFakePeerRegistry()
	arb := newFakeArbiter(1)
	// Force the first UpdateShardState (Preparing) to fail.
	arb.failNextUpdate["shard-0:9000"] = true

	runner := NewLifecycleRunner(node, arb, reg.dialer(), &fakeUserService{}, "kafka:9092")
	err := runner.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.StateFailed, node.State())
}

func TestLifecycleRunner_MigrationRetainsOwnedGroupsOnly(t *testing.T) {
	// The fake arbiter reports total=2, so node-0 shares the keyspace with
	// one other slot; after registering node-0, its retainOwnedGroups
	// should keep only groups it still hashes to.
	arb := newFakeArbiter(2)
	reg := newFakePeerRegistry()

	node0 := NewNode("node-0")
	runner0 := NewLifecycleRunner(node0, arb, reg.dialer(), &fakeUserService{}, "kafka:9092")

	// Seed node0's store directly (pre-migration state) with members
	// across a range of synthetic group ids, then simulate entering
	// Preparing/Migrating manually to exercise retainOwnedGroups.
	cur := node0.Current()
	for i := 0; i < 50; i++ {
		gid := groupIDFor(i)
		cur.Create(gid)
		require.NoError(t, cur.AddMember(context.Background(), gid, types.MemberRef{UID: "u1", Role: types.RoleOwner}))
	}

	entry, err := arb.RegisterNode(context.Background(), "node-0", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)
	node0.SetIndexTotal(entry.Index, entry.Total)

	node0.BeginMigration()
	require.NoError(t, runner0.retainOwnedGroups(context.Background()))

	newCur := node0.Current()
	sawOwned := false
	for i := 0; i < 50; i++ {
		gid := groupIDFor(i)
		count, err := newCur.GetMemberCount(gid)
		if node0.Owns(gid) {
			sawOwned = true
			assert.NoError(t, err, "owned group %s should be retained", gid)
			assert.Equal(t, 1, count)
		} else {
			assert.Error(t, err, "non-owned group %s should not be retained", gid)
		}
	}
	assert.True(t, sawOwned, "expected at least one group to remain owned by node-0")
}

func groupIDFor(i int) string {
	return "group-" + string(rune('a'+i%26)) + string(rune('0'+i%10))
}
