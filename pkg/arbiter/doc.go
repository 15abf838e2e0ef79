/*
Package arbiter implements the authoritative node registry and lifecycle
state machine for a groupshard cluster.

The arbiter is the single logical authority on cluster topology: which nodes
exist, their stable index within [0, total), and the lifecycle state each
GroupShard node is in. It never touches group membership data itself — that
lives entirely on the shard nodes (pkg/membership) — the arbiter only tells
each node what it owns and when it's safe to serve traffic for it.

# Architecture

	┌────────────────────── ARBITER ──────────────────────────┐
	│                                                           │
	│  ┌─────────────────────────────────────────┐            │
	│  │     gRPC ArbServerRpcService              │            │
	│  │  RegisterNode / Heartbeat / ListAllNodes  │            │
	│  │  UpdateShardState / GracefulLeave         │            │
	│  │  WatchTopology (server-streaming)         │            │
	│  └───────────────────┬─────────────────────┘             │
	│                      │                                     │
	│  ┌───────────────────▼─────────────────────┐             │
	│  │               Arbiter                     │            │
	│  │  - index allocation (smallest free)       │            │
	│  │  - state-machine transition validation    │            │
	│  │  - arb_version advancement on all-Normal  │            │
	│  │  - heartbeat-timeout reaper (leader only) │            │
	│  └───────────────────┬─────────────────────┘             │
	│                      │                                     │
	│  ┌───────────────────▼─────────────────────┐             │
	│  │           Raft Consensus Layer            │            │
	│  │  - leader election, log replication       │            │
	│  │  - registryFSM applies committed commands │            │
	│  └───────────────────┬─────────────────────┘             │
	│                      │                                     │
	│  ┌───────────────────▼─────────────────────┐             │
	│  │        pkg/storage.Store (BoltDB)         │            │
	│  │  node registry + arb_version counter      │            │
	│  └────────────────────────────────────────────┘           │
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │         pkg/events.Broker                   │          │
	│  │  fans registry changes out to WatchTopology │          │
	│  └────────────────────────────────────────────┘           │
	└───────────────────────────────────────────────────────────┘

This gives the arbiter — described by spec as "a single logical service" —
real replication across its own replicas, the way the rest of this codebase
runs its control-plane components, without replicating group membership
itself (that stays out of scope per the spec's Non-goals).

# Write path

Every mutating call (RegisterNode, UpdateShardState, Heartbeat,
GracefulLeave) is rejected with Unavailable unless this replica is the Raft
leader; the caller is expected to follow LeaderAddr and retry elsewhere.
Accepted calls are marshaled into a Command and proposed through raft.Apply;
registryFSM.Apply is the only code that ever touches the registry, so every
replica's store converges identically regardless of which one served the
original RPC.

# Index allocation

RegisterNode always assigns the smallest non-negative integer not currently
used as index within that node_type — never len(nodes), which would leave
gaps from earlier GracefulLeave calls unreused and grow indexes without
bound.

# Version advancement

arb_version only moves forward when every registered GroupShard entry is
Normal at the same instant (I6); UpdateShardState checks this after each
transition into Normal and, if satisfied, proposes a set_version command and
publishes registry.version_advanced so SocketGateway nodes know routing has
stabilized.
*/
package arbiter
