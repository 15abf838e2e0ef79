/*
Package metrics defines and registers the Prometheus metrics exposed by both
the arbiter and shard-node processes, and exposes them over HTTP via Handler.

Metrics are grouped by subsystem: registry/node counts and Raft leadership on
the arbiter side, membership-store and epoch-retry counters on the shard
side, and Kafka fan-out lag and dead-letter counts shared by both. Collector
samples a RegistrySource and/or a MembershipSource on a fixed interval and
publishes the results as gauges; call-path metrics (request counters,
histograms) are updated inline by the RPC and mutation code using Timer.
*/
package metrics
