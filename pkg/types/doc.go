/*
Package types defines the core data structures shared across the arbiter, the
shard nodes, and the fan-out consumer.

It holds the registry record the arbiter keeps per node (NodeEntry), the
lifecycle states a GroupShard node moves through, the wire-compatible member
role enum, and the Kafka fan-out message-type codes. Everything here is a
plain value type; the interesting behavior lives in pkg/arbiter, pkg/shard,
and pkg/membership.
*/
package types
