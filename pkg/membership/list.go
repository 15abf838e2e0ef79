package membership

import (
	"sort"

	"github.com/groupshard/groupshard/pkg/hashring"
	"github.com/groupshard/groupshard/pkg/types"
)

// Hysteresis thresholds controlling flat<->sharded promotion/demotion and
// shard-count grow/shrink. These are the load-bearing constants of the
// adaptive representation; changing them changes how many members a group
// carries before a resize fires.
const (
	itemsPerShard   = 10_000
	hysteresisDelta = 1_000
)

// flatList is the flat (non-sharded) representation of a group's members:
// an insertion-ordered slice plus a uid index for O(1) lookup, and an
// online set. Every method here is pure: it returns a new flatList (or the
// receiver, unchanged, when the operation is a no-op) and never mutates in
// place, so a reader holding an old *flatList never observes a partial
// write.
type flatList struct {
	order  []types.MemberRef
	index  map[string]int
	online map[string]struct{}
}

func newFlatList() *flatList {
	return &flatList{index: map[string]int{}, online: map[string]struct{}{}}
}

func (f *flatList) len() int { return len(f.order) }

func (f *flatList) get(uid string) (types.MemberRef, bool) {
	i, ok := f.index[uid]
	if !ok {
		return types.MemberRef{}, false
	}
	return f.order[i], true
}

func (f *flatList) clone() *flatList {
	n := &flatList{
		order:  make([]types.MemberRef, len(f.order)),
		index:  make(map[string]int, len(f.index)),
		online: make(map[string]struct{}, len(f.online)),
	}
	copy(n.order, f.order)
	for k, v := range f.index {
		n.index[k] = v
	}
	for k := range f.online {
		n.online[k] = struct{}{}
	}
	return n
}

// withAdd returns a new flatList with m appended. Re-adding an existing uid
// is a no-op: ChangeRole is the only way to alter an existing member's role.
func (f *flatList) withAdd(m types.MemberRef) (*flatList, bool) {
	if _, ok := f.index[m.UID]; ok {
		return f, false
	}
	n := f.clone()
	n.index[m.UID] = len(n.order)
	n.order = append(n.order, m)
	return n, true
}

func (f *flatList) withAddMany(ms []types.MemberRef) (*flatList, int) {
	n := f.clone()
	added := 0
	for _, m := range ms {
		if _, ok := n.index[m.UID]; ok {
			continue
		}
		n.index[m.UID] = len(n.order)
		n.order = append(n.order, m)
		added++
	}
	if added == 0 {
		return f, 0
	}
	return n, added
}

func (f *flatList) withRemove(uid string) (*flatList, bool) {
	i, ok := f.index[uid]
	if !ok {
		return f, false
	}
	n := &flatList{
		order:  make([]types.MemberRef, 0, len(f.order)-1),
		index:  make(map[string]int, len(f.index)-1),
		online: make(map[string]struct{}, len(f.online)),
	}
	for j, m := range f.order {
		if j == i {
			continue
		}
		n.index[m.UID] = len(n.order)
		n.order = append(n.order, m)
	}
	for id := range f.online {
		if id != uid {
			n.online[id] = struct{}{}
		}
	}
	return n, true
}

func (f *flatList) withSetOnline(uid string, online bool) (*flatList, bool) {
	if _, ok := f.index[uid]; !ok {
		return f, false
	}
	_, isOnline := f.online[uid]
	if isOnline == online {
		return f, false
	}
	n := f.clone()
	if online {
		n.online[uid] = struct{}{}
	} else {
		delete(n.online, uid)
	}
	return n, true
}

func (f *flatList) withChangeRole(uid string, role types.Role) (*flatList, bool) {
	i, ok := f.index[uid]
	if !ok {
		return f, false
	}
	if f.order[i].Role == role {
		return f, false
	}
	n := f.clone()
	n.order[i].Role = role
	return n, true
}

func (f *flatList) getAll() []types.MemberRef {
	out := make([]types.MemberRef, len(f.order))
	copy(out, f.order)
	return out
}

func (f *flatList) getPage(offset, limit int) []types.MemberRef {
	return pageOf(f.order, offset, limit)
}

func (f *flatList) onlineIDs() []string {
	ids := make([]string, 0, len(f.online))
	for id := range f.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *flatList) onlineCount() int { return len(f.online) }

func (f *flatList) onlinePage(offset, limit int) []string {
	return pageOf(f.onlineIDs(), offset, limit)
}

func (f *flatList) admins() []string {
	var out []string
	for _, m := range f.order {
		if m.Role == types.RoleAdmin || m.Role == types.RoleOwner {
			out = append(out, m.UID)
		}
	}
	return out
}

// shardedList is K independent flatLists, each owning the uids that hash to
// its index. It exists purely to bound the cost of any single lock-free
// rebuild once a group's membership outgrows itemsPerShard.
type shardedList struct {
	shards []*flatList
}

func (s *shardedList) shardFor(uid string) int {
	return hashring.IndexOf(uid, len(s.shards))
}

func (s *shardedList) len() int {
	n := 0
	for _, sh := range s.shards {
		n += sh.len()
	}
	return n
}

func (s *shardedList) get(uid string) (types.MemberRef, bool) {
	return s.shards[s.shardFor(uid)].get(uid)
}

func (s *shardedList) withAdd(m types.MemberRef) (*shardedList, bool) {
	i := s.shardFor(m.UID)
	newShard, added := s.shards[i].withAdd(m)
	if !added {
		return s, false
	}
	return s.withReplacedShard(i, newShard), true
}

func (s *shardedList) withAddMany(ms []types.MemberRef) (*shardedList, int) {
	byShard := make(map[int][]types.MemberRef)
	for _, m := range ms {
		i := s.shardFor(m.UID)
		byShard[i] = append(byShard[i], m)
	}
	next := s
	total := 0
	for i, group := range byShard {
		newShard, added := next.shards[i].withAddMany(group)
		if added == 0 {
			continue
		}
		next = next.withReplacedShard(i, newShard)
		total += added
	}
	if total == 0 {
		return s, 0
	}
	return next, total
}

func (s *shardedList) withRemove(uid string) (*shardedList, bool) {
	i := s.shardFor(uid)
	newShard, removed := s.shards[i].withRemove(uid)
	if !removed {
		return s, false
	}
	return s.withReplacedShard(i, newShard), true
}

func (s *shardedList) withSetOnline(uid string, online bool) (*shardedList, bool) {
	i := s.shardFor(uid)
	newShard, changed := s.shards[i].withSetOnline(uid, online)
	if !changed {
		return s, false
	}
	return s.withReplacedShard(i, newShard), true
}

func (s *shardedList) withChangeRole(uid string, role types.Role) (*shardedList, bool) {
	i := s.shardFor(uid)
	newShard, changed := s.shards[i].withChangeRole(uid, role)
	if !changed {
		return s, false
	}
	return s.withReplacedShard(i, newShard), true
}

func (s *shardedList) withReplacedShard(i int, f *flatList) *shardedList {
	shards := make([]*flatList, len(s.shards))
	copy(shards, s.shards)
	shards[i] = f
	return &shardedList{shards: shards}
}

func (s *shardedList) getAll() []types.MemberRef {
	var out []types.MemberRef
	for _, sh := range s.shards {
		out = append(out, sh.getAll()...)
	}
	return out
}

// getPage concatenates shards in shard-index order and paginates over the
// concatenation. Sharded groups are large enough that this is the only
// sensible definition of "page" short of a secondary sorted index.
func (s *shardedList) getPage(offset, limit int) []types.MemberRef {
	return pageOf(s.getAll(), offset, limit)
}

func (s *shardedList) onlineIDs() []string {
	var ids []string
	for _, sh := range s.shards {
		ids = append(ids, sh.onlineIDs()...)
	}
	sort.Strings(ids)
	return ids
}

func (s *shardedList) onlineCount() int {
	n := 0
	for _, sh := range s.shards {
		n += sh.onlineCount()
	}
	return n
}

func (s *shardedList) onlinePage(offset, limit int) []string {
	return pageOf(s.onlineIDs(), offset, limit)
}

func (s *shardedList) admins() []string {
	var out []string
	for _, sh := range s.shards {
		out = append(out, sh.admins()...)
	}
	return out
}

func newShardedFrom(members []types.MemberRef, online map[string]struct{}, shardCount int) *shardedList {
	shards := make([]*flatList, shardCount)
	for i := range shards {
		shards[i] = newFlatList()
	}
	sl := &shardedList{shards: shards}
	for _, m := range members {
		i := sl.shardFor(m.UID)
		shards[i], _ = shards[i].withAdd(m)
	}
	for uid := range online {
		i := sl.shardFor(uid)
		shards[i], _ = shards[i].withSetOnline(uid, true)
	}
	return &shardedList{shards: shards}
}

func newFlatFrom(members []types.MemberRef, online map[string]struct{}) *flatList {
	f := newFlatList()
	for _, m := range members {
		f, _ = f.withAdd(m)
	}
	for uid := range online {
		f, _ = f.withSetOnline(uid, true)
	}
	return f
}

// pageOf is the slice-paginator shared by every representation: offset is
// clamped, limit <= 0 means "to the end".
func pageOf[T any](all []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	out := make([]T, end-offset)
	copy(out, all[offset:end])
	return out
}
