package shard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupshard/groupshard/pkg/arbiter"
	"github.com/groupshard/groupshard/pkg/types"
)

// arbiterAdapter wraps a real *arbiter.Arbiter as an ArbiterClient, the
// production shape (pkg/client.ArbiterClient talks gRPC to the same
// methods); the adapter just skips the wire hop so these tests exercise
// real Raft-backed registry behavior without a real network.
type arbiterAdapter struct {
	arb *arbiter.Arbiter
}

func (a *arbiterAdapter) RegisterNode(ctx context.Context, nodeAddr string, nodeType types.NodeType, kafkaAddr string) (*types.NodeEntry, error) {
	return a.arb.RegisterNode(nodeAddr, nodeType, kafkaAddr)
}

func (a *arbiterAdapter) UpdateShardState(ctx context.Context, nodeAddr string, newState types.ShardState) (*types.NodeEntry, error) {
	return a.arb.UpdateShardState(nodeAddr, newState)
}

func (a *arbiterAdapter) Heartbeat(ctx context.Context, nodeAddr string) error {
	return a.arb.Heartbeat(nodeAddr)
}

func (a *arbiterAdapter) GracefulLeave(ctx context.Context, nodeAddr string) error {
	return a.arb.GracefulLeave(nodeAddr)
}

func (a *arbiterAdapter) ListAllNodes(ctx context.Context, nodeType types.NodeType) ([]types.NodeEntry, error) {
	return a.arb.ListAllNodes(nodeType), nil
}

func newTestArbiterAdapter(t *testing.T) *arbiterAdapter {
	t.Helper()
	arb, err := arbiter.New(arbiter.Config{
		NodeID:   "test-arbiter",
		BindAddr: "127.0.0.1:0",
		DataDir:  t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, arb.Bootstrap())
	require.Eventually(t, arb.IsLeader, 5*time.Second, 10*time.Millisecond, "arbiter never became leader")
	t.Cleanup(func() { _ = arb.Shutdown() })
	return &arbiterAdapter{arb: arb}
}

// Scenario 1 (solo bring-up): one shard node against an empty, real
// arbiter should register at index 0 of 1 and climb to Normal.
func TestIntegration_SoloBringUp(t *testing.T) {
	arb := newTestArbiterAdapter(t)
	reg := newFakePeerRegistry()
	node := NewNode("10.0.0.1:50051")
	runner := NewLifecycleRunner(node, arb, reg.dialer(), &fakeUserService{}, "")

	require.NoError(t, runner.Start(context.Background()))
	defer runner.Stop()

	assert.Equal(t, types.StateNormal, node.State())
	assert.Equal(t, 0, node.Index())
	assert.Equal(t, 1, node.Total())

	entries := arb.arb.ListAllNodes(types.NodeTypeGroupShard)
	require.Len(t, entries, 1)
	assert.Equal(t, "10.0.0.1:50051", entries[0].NodeAddr)
}

// Scenario 6 (graceful leave): with two nodes Normal, one leaves; the
// arbiter drops it from the registry and total shrinks back to 1.
func TestIntegration_GracefulLeaveShrinksTotal(t *testing.T) {
	arb := newTestArbiterAdapter(t)
	reg := newFakePeerRegistry()

	nodeA := NewNode("node-a:9000")
	runnerA := NewLifecycleRunner(nodeA, arb, reg.dialer(), &fakeUserService{}, "")
	require.NoError(t, runnerA.Start(context.Background()))
	defer runnerA.Stop()

	nodeB := NewNode("node-b:9000")
	runnerB := NewLifecycleRunner(nodeB, arb, reg.dialer(), &fakeUserService{}, "")
	require.NoError(t, runnerB.Start(context.Background()))
	defer runnerB.Stop()

	assert.Equal(t, 2, nodeA.Total())
	assert.Equal(t, 2, nodeB.Total())

	require.NoError(t, runnerA.Shutdown(context.Background()))
	assert.Equal(t, types.StateOffline, nodeA.State())

	entries := arb.arb.ListAllNodes(types.NodeTypeGroupShard)
	require.Len(t, entries, 1)
	assert.Equal(t, "node-b:9000", entries[0].NodeAddr)
}
