// Package hashring implements the single consistent-hashing function this
// domain depends on: modulo hashing over a fixed key space (group_id over
// the GroupShard node count, group_id over the outer membership map's 64
// slots, uid over a MemberList's inner shard count). Every caller that needs
// "which bucket does this key belong to" goes through HashKey so the scheme
// can be swapped for a ring or rendezvous hash later by changing this file
// alone.
package hashring

import "hash/fnv"

// HashKey returns a stable, process-independent hash of s. It is used
// wherever the system needs deterministic routing: group ownership,
// outer-map slot selection, inner-shard selection.
func HashKey(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// IndexOf returns HashKey(s) mod n, the bucket s is routed to out of n
// buckets. Panics if n <= 0; callers are expected to know their own bucket
// count.
func IndexOf(s string, n int) int {
	if n <= 0 {
		panic("hashring: IndexOf called with n <= 0")
	}
	return int(HashKey(s) % uint64(n))
}
