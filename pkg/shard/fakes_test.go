package shard

import (
	"context"
	"fmt"
	"sync"

	"github.com/groupshard/groupshard/pkg/hashring"
	"github.com/groupshard/groupshard/pkg/types"
)

// fakeArbiter is an in-memory ArbiterClient used to drive a LifecycleRunner
// in tests without a real arbiter process, per spec.md §9's dynamic
// dispatch note.
type fakeArbiter struct {
	mu      sync.Mutex
	entries map[string]*types.NodeEntry
	total   int
	version uint64
	// failNextUpdate, when set, causes UpdateShardState to fail for
	// the named node_addr once, simulating a transient RPC error.
	failNextUpdate map[string]bool
}

func newFakeArbiter(total int) *fakeArbiter {
	return &fakeArbiter{
		entries:        make(map[string]*types.NodeEntry),
		total:          total,
		failNextUpdate: make(map[string]bool),
	}
}

func (f *fakeArbiter) RegisterNode(ctx context.Context, nodeAddr string, nodeType types.NodeType, kafkaAddr string) (*types.NodeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version++
	index := hashring.IndexOf(nodeAddr, f.total)
	e := &types.NodeEntry{
		NodeAddr:  nodeAddr,
		NodeType:  nodeType,
		Index:     index,
		Total:     f.total,
		State:     types.StateRegistered,
		Version:   f.version,
		KafkaAddr: kafkaAddr,
	}
	f.entries[nodeAddr] = e
	cp := *e
	return &cp, nil
}

func (f *fakeArbiter) UpdateShardState(ctx context.Context, nodeAddr string, newState types.ShardState) (*types.NodeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextUpdate[nodeAddr] {
		f.failNextUpdate[nodeAddr] = false
		return nil, errFakeTransient
	}
	e, ok := f.entries[nodeAddr]
	if !ok {
		return nil, errFakeNotFound
	}
	if !isPermittedTestTransition(e.State, newState) {
		return nil, errFakeInvalidTransition
	}
	f.version++
	e.State = newState
	e.Version = f.version
	cp := *e
	return &cp, nil
}

func (f *fakeArbiter) Heartbeat(ctx context.Context, nodeAddr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[nodeAddr]; !ok {
		return errFakeNotFound
	}
	return nil
}

func (f *fakeArbiter) GracefulLeave(ctx context.Context, nodeAddr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, nodeAddr)
	return nil
}

func (f *fakeArbiter) ListAllNodes(ctx context.Context, nodeType types.NodeType) ([]types.NodeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.NodeEntry, 0, len(f.entries))
	for _, e := range f.entries {
		if e.NodeType == nodeType {
			out = append(out, *e)
		}
	}
	return out, nil
}

// isPermittedTestTransition mirrors the arbiter package's private table
// just enough for the fake to reject an out-of-order call the same way
// the real service would.
func isPermittedTestTransition(from, to types.ShardState) bool {
	switch from {
	case types.StateRegistered:
		return to == types.StatePreparing
	case types.StatePreparing:
		return to == types.StateMigrating || to == types.StateFailed
	case types.StateMigrating:
		return to == types.StateSyncing || to == types.StateFailed
	case types.StateSyncing:
		return to == types.StateReady || to == types.StateFailed
	case types.StateReady:
		return to == types.StateNormal || to == types.StateFailed
	case types.StateNormal:
		return to == types.StatePreparingOffline || to == types.StateFailed
	case types.StatePreparingOffline:
		return to == types.StateOffline || to == types.StateFailed
	default:
		return false
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

const (
	errFakeTransient         = fakeErr("fake: transient rpc failure")
	errFakeNotFound          = fakeErr("fake: node not registered")
	errFakeInvalidTransition = fakeErr("fake: invalid transition")
)

// fakePeerClient records every SyncData call it receives.
type fakePeerClient struct {
	addr string
	reg  *fakePeerRegistry
}

func (p *fakePeerClient) SyncData(ctx context.Context, groupID string, members []types.MemberRef, onlineUIDs []string) error {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	p.reg.synced[p.addr] = append(p.reg.synced[p.addr], groupID)
	return nil
}

func (p *fakePeerClient) Close() error { return nil }

type fakePeerRegistry struct {
	mu     sync.Mutex
	synced map[string][]string
}

func newFakePeerRegistry() *fakePeerRegistry {
	return &fakePeerRegistry{synced: make(map[string][]string)}
}

func (r *fakePeerRegistry) dialer() PeerDialer {
	return func(addr string) (PeerClient, error) {
		return &fakePeerClient{addr: addr, reg: r}, nil
	}
}

// fakeUserService backs LoadFromData in tests.
type fakeUserService struct {
	owned   map[string][]string // "index/total" -> group ids
	members map[string][]types.MemberRef
	online  map[string][]string
}

func (u *fakeUserService) GroupsOwnedBy(ctx context.Context, index, total int) ([]string, error) {
	key := keyOf(index, total)
	return u.owned[key], nil
}

func (u *fakeUserService) MembersOf(ctx context.Context, groupID string) ([]types.MemberRef, []string, error) {
	return u.members[groupID], u.online[groupID], nil
}

func keyOf(index, total int) string {
	return fmt.Sprintf("%d/%d", index, total)
}
