// Package membership implements the lock-free, copy-on-write group
// membership store that backs a GroupShard node: a fixed 64-slot outer map
// from group_id to a per-group MemberList, and a per-group adaptive
// representation that promotes from a flat list to a sharded one (and back)
// as membership grows or shrinks.
//
// Every mutation replaces an immutable value behind an atomic pointer and
// retries on CAS failure; nothing in this package ever takes a mutex around
// more than the single compare-and-swap itself. This mirrors the original
// Rust service's ArcSwap-based member list wrapper (see
// db/member/member_list_wrapper.rs and db/hash_shard_map.rs in the source
// this domain was distilled from): the outer map and each MemberList are
// both "one atomic pointer to an immutable value, CAS to mutate."
package membership
