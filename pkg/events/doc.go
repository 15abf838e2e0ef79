/*
Package events provides the in-memory pub/sub broker behind the arbiter's
WatchTopology notifications.

The arbiter publishes an Event every time a node registers, changes shard
state, gets reaped for a missed heartbeat, or the registry's arb_version
advances. Each connected GroupShard node holds one Subscriber, fed by the
broker's single broadcast loop; a subscriber with a full buffer simply
misses events rather than blocking the broker; it is expected to reconcile
by calling ListAllNodes rather than relying on the stream alone. Publish is
fire-and-forget: there is no acknowledgment, retry, or persistence, since
event delivery here is an optimization over polling, not the node's only
source of truth about the topology.
*/
package events
