// Package fanout consumes the group-node-msg Kafka topic and applies each
// mutation to a membership.Store, per spec.md §4.4. Messages are framed as
// a single GroupNodeMsgType byte followed by a JSON-encoded payload (see
// api/proto/fanout_messages.go); offsets are committed manually once a
// message's effect has been durably applied, and persistent failures are
// routed to a dead-letter topic rather than blocking the partition.
package fanout
