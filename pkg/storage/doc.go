/*
Package storage provides the durable registry persistence the arbiter's Raft
FSM applies committed log entries to: the node registry (one entry per
registered node) and the monotonic arb_version counter. It is backed by
BoltDB, one bucket per concern, JSON-encoded values.

Group membership itself never lands here — it stays in-memory on the shard
nodes that own it (see pkg/membership) and is rebuilt from the external
user service on cold start (pkg/shard's LoadFromData) rather than read
from durable storage.
*/
package storage
