package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/groupshard/groupshard/pkg/types"
)

type fakeRegistry struct {
	nodes    []types.NodeEntry
	isLeader bool
	stats    map[string]uint64
	version  uint64
}

func (f *fakeRegistry) ListAllNodes(nodeType types.NodeType) []types.NodeEntry {
	if nodeType == "" {
		return f.nodes
	}
	var out []types.NodeEntry
	for _, n := range f.nodes {
		if n.NodeType == nodeType {
			out = append(out, n)
		}
	}
	return out
}
func (f *fakeRegistry) IsLeader() bool               { return f.isLeader }
func (f *fakeRegistry) RaftStats() map[string]uint64 { return f.stats }
func (f *fakeRegistry) Version() uint64              { return f.version }

type fakeMembership struct {
	groups, members int
}

func (f *fakeMembership) GroupCount() int  { return f.groups }
func (f *fakeMembership) MemberCount() int { return f.members }

func TestCollector_CollectUpdatesRegistryGauges(t *testing.T) {
	reg := &fakeRegistry{
		nodes: []types.NodeEntry{
			{NodeType: types.NodeTypeGroupShard, State: types.StateNormal},
			{NodeType: types.NodeTypeGroupShard, State: types.StatePreparing},
		},
		isLeader: true,
		stats:    map[string]uint64{"last_log_index": 10, "applied_index": 9, "num_peers": 3},
		version:  7,
	}
	c := NewCollector(reg, nil)
	c.collect()

	assert.Equal(t, float64(1), testutil.ToFloat64(RaftLeader))
	assert.Equal(t, float64(7), testutil.ToFloat64(RegistryVersion))
	assert.Equal(t, float64(10), testutil.ToFloat64(RaftLogIndex))
	assert.Equal(t, float64(9), testutil.ToFloat64(RaftAppliedIndex))
	assert.Equal(t, float64(3), testutil.ToFloat64(RaftPeers))
}

func TestCollector_CollectUpdatesMembershipGauges(t *testing.T) {
	mem := &fakeMembership{groups: 12, members: 340}
	c := NewCollector(nil, mem)
	c.collect()

	assert.Equal(t, float64(12), testutil.ToFloat64(GroupsTotal))
	assert.Equal(t, float64(340), testutil.ToFloat64(MembersTotal))
}

func TestCollector_StartStopDoesNotPanic(t *testing.T) {
	c := NewCollector(&fakeRegistry{}, &fakeMembership{})
	c.Start()
	time.Sleep(10 * time.Millisecond)
	c.Stop()
}
