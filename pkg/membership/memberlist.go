package membership

import (
	"sync/atomic"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/metrics"
	"github.com/groupshard/groupshard/pkg/types"
)

// listState is exactly one of flat or sharded, never both. Every listState
// value is immutable once built; a MemberList holds an atomic pointer to
// the current one.
type listState struct {
	flat    *flatList
	sharded *shardedList
}

func newFlatState() *listState { return &listState{flat: newFlatList()} }

func (s *listState) length() int {
	if s.flat != nil {
		return s.flat.len()
	}
	return s.sharded.len()
}

func (s *listState) snapshotMembers() ([]types.MemberRef, map[string]struct{}) {
	if s.flat != nil {
		online := make(map[string]struct{}, len(s.flat.online))
		for id := range s.flat.online {
			online[id] = struct{}{}
		}
		return s.flat.getAll(), online
	}
	var all []types.MemberRef
	online := map[string]struct{}{}
	for _, sh := range s.sharded.shards {
		all = append(all, sh.getAll()...)
		for id := range sh.online {
			online[id] = struct{}{}
		}
	}
	return all, online
}

// MemberList is the adaptive, lock-free per-group member store: one atomic
// pointer to the current listState, plus a monotonic epoch counter bumped
// only when the representation itself is replaced wholesale (a
// flat<->sharded promotion/demotion or a shard-count grow/shrink). Ordinary
// member add/remove/online/role mutations do not advance the epoch.
type MemberList struct {
	state atomic.Pointer[listState]
	epoch atomic.Uint64
}

// NewMemberList returns an empty, flat MemberList.
func NewMemberList() *MemberList {
	ml := &MemberList{}
	ml.state.Store(newFlatState())
	return ml
}

// Epoch returns the current structural-replacement counter.
func (ml *MemberList) Epoch() uint64 { return ml.epoch.Load() }

// Len returns the number of members currently held, flat or sharded.
func (ml *MemberList) Len() int { return ml.state.Load().length() }

func (ml *MemberList) Get(uid string) (types.MemberRef, bool) {
	s := ml.state.Load()
	if s.flat != nil {
		return s.flat.get(uid)
	}
	return s.sharded.get(uid)
}

func (ml *MemberList) GetAll() []types.MemberRef {
	s := ml.state.Load()
	if s.flat != nil {
		return s.flat.getAll()
	}
	return s.sharded.getAll()
}

func (ml *MemberList) GetPage(offset, limit int) []types.MemberRef {
	s := ml.state.Load()
	if s.flat != nil {
		return s.flat.getPage(offset, limit)
	}
	return s.sharded.getPage(offset, limit)
}

func (ml *MemberList) OnlineIDs() []string {
	s := ml.state.Load()
	if s.flat != nil {
		return s.flat.onlineIDs()
	}
	return s.sharded.onlineIDs()
}

func (ml *MemberList) OnlineCount() int {
	s := ml.state.Load()
	if s.flat != nil {
		return s.flat.onlineCount()
	}
	return s.sharded.onlineCount()
}

func (ml *MemberList) OnlinePage(offset, limit int) []string {
	s := ml.state.Load()
	if s.flat != nil {
		return s.flat.onlinePage(offset, limit)
	}
	return s.sharded.onlinePage(offset, limit)
}

func (ml *MemberList) Admins() []string {
	s := ml.state.Load()
	if s.flat != nil {
		return s.flat.admins()
	}
	return s.sharded.admins()
}

// Add inserts m if absent. Re-adding an existing uid is a no-op.
func (ml *MemberList) Add(m types.MemberRef) error {
	return ml.mutateFlatOrSharded(
		func(f *flatList) (*flatList, bool) { return f.withAdd(m) },
		func(s *shardedList) (*shardedList, bool) { return s.withAdd(m) },
	)
}

// AddMany inserts every member in ms not already present, as a single
// structural step.
func (ml *MemberList) AddMany(ms []types.MemberRef) error {
	return ml.mutateFlatOrSharded(
		func(f *flatList) (*flatList, bool) { n, added := f.withAddMany(ms); return n, added > 0 },
		func(s *shardedList) (*shardedList, bool) { n, added := s.withAddMany(ms); return n, added > 0 },
	)
}

func (ml *MemberList) Remove(uid string) error {
	return ml.mutateFlatOrSharded(
		func(f *flatList) (*flatList, bool) { return f.withRemove(uid) },
		func(s *shardedList) (*shardedList, bool) { return s.withRemove(uid) },
	)
}

func (ml *MemberList) SetOnline(uid string, online bool) error {
	return ml.mutateFlatOrSharded(
		func(f *flatList) (*flatList, bool) { return f.withSetOnline(uid, online) },
		func(s *shardedList) (*shardedList, bool) { return s.withSetOnline(uid, online) },
	)
}

func (ml *MemberList) ChangeRole(uid string, role types.Role) error {
	return ml.mutateFlatOrSharded(
		func(f *flatList) (*flatList, bool) { return f.withChangeRole(uid, role) },
		func(s *shardedList) (*shardedList, bool) { return s.withChangeRole(uid, role) },
	)
}

// Clear resets the list to empty. Matches the original wrapper's clear():
// a flat list clears to a fresh flat list, a sharded list clears to a
// fresh sharded list with the same shard count. Clear always counts as a
// structural replacement, even when the shape doesn't change, since the
// whole backing value is discarded.
func (ml *MemberList) Clear() {
	for {
		old := ml.state.Load()
		var next *listState
		if old.flat != nil {
			next = newFlatState()
		} else {
			next = &listState{sharded: newShardedFrom(nil, nil, len(old.sharded.shards))}
		}
		if ml.state.CompareAndSwap(old, next) {
			ml.epoch.Add(1)
			return
		}
	}
}

// mutateFlatOrSharded applies one of the two pure transforms depending on
// the list's current shape, then checks whether the result needs a
// structural resize, and finally CASes the result in. A CAS failure means
// a concurrent mutator landed first; the caller (Store) is expected to
// retry with backoff via retryOnContention.
func (ml *MemberList) mutateFlatOrSharded(
	applyFlat func(*flatList) (*flatList, bool),
	applySharded func(*shardedList) (*shardedList, bool),
) error {
	old := ml.state.Load()

	var next *listState
	if old.flat != nil {
		nf, changed := applyFlat(old.flat)
		if !changed {
			return nil
		}
		next = &listState{flat: nf}
	} else {
		ns, changed := applySharded(old.sharded)
		if !changed {
			return nil
		}
		next = &listState{sharded: ns}
	}

	resized, structural := maybeResize(next)
	if !ml.state.CompareAndSwap(old, resized) {
		return errs.New(errs.Retry, "memberlist.mutate", "epoch conflict, list changed concurrently")
	}
	if structural {
		ml.epoch.Add(1)
		if resized.sharded != nil && old.flat != nil {
			metrics.MemberListPromotionsTotal.Inc()
		} else if resized.flat != nil && old.sharded != nil {
			metrics.MemberListDemotionsTotal.Inc()
		}
	}
	return nil
}

// maybeResize applies the exact hysteresis formulas this domain requires:
// a flat list promotes to sharded once it exceeds itemsPerShard by more
// than hysteresisDelta; a sharded list grows by one shard past the same
// margin, shrinks by one shard well below it, and demotes back to flat
// once a single remaining shard is itself small enough.
func maybeResize(s *listState) (*listState, bool) {
	n := s.length()

	if s.flat != nil {
		if n > itemsPerShard+hysteresisDelta {
			members, online := s.snapshotMembers()
			target := n / itemsPerShard
			if target < 1 {
				target = 1
			}
			return &listState{sharded: newShardedFrom(members, online, target)}, true
		}
		return s, false
	}

	shardCount := len(s.sharded.shards)
	switch {
	case n > shardCount*itemsPerShard+hysteresisDelta:
		members, online := s.snapshotMembers()
		return &listState{sharded: newShardedFrom(members, online, shardCount+1)}, true

	case shardCount > 1 && n < (shardCount-1)*saturatingSub(itemsPerShard, hysteresisDelta):
		members, online := s.snapshotMembers()
		return &listState{sharded: newShardedFrom(members, online, shardCount-1)}, true

	case shardCount == 1 && n < saturatingSub(itemsPerShard, hysteresisDelta):
		members, online := s.snapshotMembers()
		return &listState{flat: newFlatFrom(members, online)}, true

	default:
		return s, false
	}
}

func saturatingSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}
