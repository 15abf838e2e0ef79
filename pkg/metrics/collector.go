package metrics

import (
	"time"

	"github.com/groupshard/groupshard/pkg/types"
)

// RegistrySource is the subset of arbiter behavior the collector needs.
// pkg/arbiter.Arbiter satisfies this; defining it here keeps pkg/metrics
// free of a dependency on pkg/arbiter.
type RegistrySource interface {
	ListAllNodes(nodeType types.NodeType) []types.NodeEntry
	IsLeader() bool
	RaftStats() map[string]uint64
	Version() uint64
}

// MembershipSource is the subset of shard-side behavior the collector needs
// to report group/member counts.
type MembershipSource interface {
	GroupCount() int
	MemberCount() int
}

// Collector periodically samples the arbiter and/or the local membership
// store and publishes the results as Prometheus gauges.
type Collector struct {
	registry   RegistrySource
	membership MembershipSource
	stopCh     chan struct{}
}

// NewCollector creates a new metrics collector. Either source may be nil;
// the arbiter process passes only a RegistrySource, a shard node passes
// only a MembershipSource.
func NewCollector(registry RegistrySource, membership MembershipSource) *Collector {
	return &Collector{
		registry:   registry,
		membership: membership,
		stopCh:     make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	if c.registry != nil {
		c.collectNodeMetrics()
		c.collectRaftMetrics()
	}
	if c.membership != nil {
		c.collectMembershipMetrics()
	}
}

func (c *Collector) collectNodeMetrics() {
	nodes := c.registry.ListAllNodes("")

	counts := make(map[types.NodeType]map[types.ShardState]int)
	for _, node := range nodes {
		if counts[node.NodeType] == nil {
			counts[node.NodeType] = make(map[types.ShardState]int)
		}
		counts[node.NodeType][node.State]++
	}

	for nodeType, states := range counts {
		for state, count := range states {
			NodesTotal.WithLabelValues(string(nodeType), string(state)).Set(float64(count))
		}
	}

	RegistryVersion.Set(float64(c.registry.Version()))
}

func (c *Collector) collectRaftMetrics() {
	if c.registry.IsLeader() {
		RaftLeader.Set(1)
	} else {
		RaftLeader.Set(0)
	}

	stats := c.registry.RaftStats()
	if stats != nil {
		if lastIndex, ok := stats["last_log_index"]; ok {
			RaftLogIndex.Set(float64(lastIndex))
		}
		if appliedIndex, ok := stats["applied_index"]; ok {
			RaftAppliedIndex.Set(float64(appliedIndex))
		}
		if peers, ok := stats["num_peers"]; ok {
			RaftPeers.Set(float64(peers))
		}
	}
}

func (c *Collector) collectMembershipMetrics() {
	GroupsTotal.Set(float64(c.membership.GroupCount()))
	MembersTotal.Set(float64(c.membership.MemberCount()))
}
