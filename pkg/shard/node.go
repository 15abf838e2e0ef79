package shard

import (
	"sync"
	"sync/atomic"

	"github.com/groupshard/groupshard/pkg/hashring"
	"github.com/groupshard/groupshard/pkg/membership"
	"github.com/groupshard/groupshard/pkg/types"
)

// Node is a GroupShard node's local state: the live membership store,
// the read-only snapshot held during migration, and the shard_info the
// lifecycle runner keeps aligned with the arbiter's registry entry.
type Node struct {
	addr string

	mu             sync.RWMutex
	index          int
	total          int
	state          types.ShardState
	version        uint64
	lastUpdateTime int64
	lastHeartbeat  int64

	current  atomic.Pointer[membership.Store]
	snapshot atomic.Pointer[membership.Store] // nil outside a migration window
}

// NewNode returns a Node with an empty current store, in state Registered.
func NewNode(addr string) *Node {
	n := &Node{addr: addr, state: types.StateRegistered}
	n.current.Store(membership.NewStore())
	return n
}

func (n *Node) Addr() string { return n.addr }

// Current returns the store serving live traffic.
func (n *Node) Current() *membership.Store { return n.current.Load() }

// Snapshot returns the read-only migration-source store, or nil when the
// node is not currently migrating.
func (n *Node) Snapshot() *membership.Store { return n.snapshot.Load() }

func (n *Node) SetIndexTotal(index, total int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.index = index
	n.total = total
}

func (n *Node) Index() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index
}

func (n *Node) Total() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.total
}

func (n *Node) State() types.ShardState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

func (n *Node) SetState(s types.ShardState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = s
}

func (n *Node) Version() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.version
}

func (n *Node) SetVersion(v uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.version = v
}

func (n *Node) TouchHeartbeat(now int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastHeartbeat = now
}

// BeginMigration atomically moves current to snapshot and installs a fresh
// empty store as the new current, per spec.md §4.2's ->Preparing effect.
// No traffic is served from current for groups owned under the new
// topology until Normal; reads for groups still owned go via Snapshot in
// the interim (the RPC layer is responsible for choosing which store to
// read from based on State()).
func (n *Node) BeginMigration() {
	old := n.current.Load()
	n.snapshot.Store(old)
	n.current.Store(membership.NewStore())
}

// EndMigration discards the snapshot, per spec.md §4.2's ->Ready effect.
func (n *Node) EndMigration() {
	n.snapshot.Store(nil)
}

// GroupCount implements metrics.MembershipSource against the live store,
// not a point-in-time snapshot of it, so a Collector holding the Node
// keeps reporting correctly across a BeginMigration/EndMigration swap.
func (n *Node) GroupCount() int { return n.Current().GroupCount() }

// MemberCount implements metrics.MembershipSource, see GroupCount.
func (n *Node) MemberCount() int { return n.Current().MemberCount() }

// Owns reports whether this node is the current owner of groupID, using
// the index/total currently held.
func (n *Node) Owns(groupID string) bool {
	total := n.Total()
	if total <= 0 {
		return false
	}
	return hashring.IndexOf(groupID, total) == n.Index()
}
