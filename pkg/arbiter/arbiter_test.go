package arbiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupshard/groupshard/pkg/types"
)

// newTestArbiter bootstraps a single-node Raft cluster in a temp dir and
// waits for it to become leader, since every mutating call on Arbiter
// requires IsLeader().
func newTestArbiter(t *testing.T) *Arbiter {
	t.Helper()
	a, err := New(Config{
		NodeID:   "test-node",
		BindAddr: "127.0.0.1:0",
		DataDir:  t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, a.Bootstrap())

	require.Eventually(t, a.IsLeader, 5*time.Second, 10*time.Millisecond, "arbiter never became leader")

	t.Cleanup(func() {
		_ = a.Shutdown()
	})
	return a
}

func TestArbiter_BootstrapBecomesLeader(t *testing.T) {
	a := newTestArbiter(t)
	assert.True(t, a.IsLeader())
	assert.Equal(t, a.bindAddr, a.LeaderAddr())
}

func TestArbiter_RegisterNodeAssignsIndexAndTotal(t *testing.T) {
	a := newTestArbiter(t)

	entry, err := a.RegisterNode("shard-0:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Index)
	assert.Equal(t, 1, entry.Total)
	assert.Equal(t, types.StatePreparing, entry.State, "a freshly registered entry starts at Preparing")

	entry2, err := a.RegisterNode("shard-1:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)
	assert.Equal(t, 1, entry2.Index)
	assert.Equal(t, 2, entry2.Total)
}

func TestArbiter_RegisterNodeIsIdempotent(t *testing.T) {
	a := newTestArbiter(t)

	first, err := a.RegisterNode("shard-0:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)

	second, err := a.RegisterNode("shard-0:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)
	assert.Equal(t, first.Index, second.Index)
	assert.Equal(t, first.Total, second.Total)

	nodes := a.ListAllNodes(types.NodeTypeGroupShard)
	assert.Len(t, nodes, 1)
}

func TestArbiter_RegisterNodeRejectsEmptyAddr(t *testing.T) {
	a := newTestArbiter(t)
	_, err := a.RegisterNode("", types.NodeTypeGroupShard, "kafka:9092")
	assert.Error(t, err)
}

func TestArbiter_UpdateShardStateUnknownNodeErrors(t *testing.T) {
	a := newTestArbiter(t)
	_, err := a.UpdateShardState("does-not-exist:9000", types.StatePreparing)
	assert.Error(t, err)
}

func TestArbiter_UpdateShardStateAdvancesVersionWhenAllNormal(t *testing.T) {
	a := newTestArbiter(t)

	_, err := a.RegisterNode("shard-0:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), a.Version())

	// RegisterNode's applied entry already starts at Preparing, so the
	// remaining climb is Migrating -> Syncing -> Ready -> Normal.
	for _, s := range []types.ShardState{
		types.StateMigrating, types.StateSyncing, types.StateReady, types.StateNormal,
	} {
		_, err := a.UpdateShardState("shard-0:9000", s)
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(1), a.Version(), "arb_version should advance once every shard is Normal")
}

func TestArbiter_GracefulLeaveRemovesNode(t *testing.T) {
	a := newTestArbiter(t)

	_, err := a.RegisterNode("shard-0:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)
	require.NoError(t, a.GracefulLeave("shard-0:9000"))

	assert.Empty(t, a.ListAllNodes(types.NodeTypeGroupShard))
}

func TestArbiter_GracefulLeaveUnknownNodeErrors(t *testing.T) {
	a := newTestArbiter(t)
	assert.Error(t, a.GracefulLeave("ghost:9000"))
}

func TestArbiter_HeartbeatUnknownNodeErrors(t *testing.T) {
	a := newTestArbiter(t)
	assert.Error(t, a.Heartbeat("ghost:9000"))
}

func TestArbiter_HeartbeatKnownNodeSucceeds(t *testing.T) {
	a := newTestArbiter(t)
	_, err := a.RegisterNode("shard-0:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)
	assert.NoError(t, a.Heartbeat("shard-0:9000"))
}

func TestArbiter_ListAllNodesFiltersByType(t *testing.T) {
	a := newTestArbiter(t)

	_, err := a.RegisterNode("shard-0:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)
	_, err = a.RegisterNode("gateway-0:7071", types.NodeTypeSocketGateway, "")
	require.NoError(t, err)

	shards := a.ListAllNodes(types.NodeTypeGroupShard)
	require.Len(t, shards, 1)
	assert.Equal(t, "shard-0:9000", shards[0].NodeAddr)

	all := a.ListAllNodes("")
	assert.Len(t, all, 2)
}

func TestArbiter_SubscribeReceivesRegistrationEvent(t *testing.T) {
	a := newTestArbiter(t)
	sub := a.Subscribe()
	defer a.Unsubscribe(sub)

	_, err := a.RegisterNode("shard-0:9000", types.NodeTypeGroupShard, "kafka:9092")
	require.NoError(t, err)

	select {
	case ev := <-sub:
		assert.Equal(t, "shard-0:9000", ev.NodeAddr)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for registration event")
	}
}
