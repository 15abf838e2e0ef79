// Package shard implements a GroupShard node: the per-process owner of a
// slice of the group-id keyspace, its lifecycle runner, and the migration
// logic that moves membership data when the arbiter's topology changes.
//
// A Node holds two membership.Store instances behind atomic pointers,
// current (serving live traffic) and snapshot (the read-only source during
// migration), following spec.md §3's current/snapshot split. The
// LifecycleRunner drives a Node through the arbiter-coordinated state
// machine, grounded on the original source's arb_manager.rs job loop, with
// its heartbeat and reconcile work in ticker+stopCh loops.
package shard
