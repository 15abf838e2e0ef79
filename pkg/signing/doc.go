// Package signing implements the shared signing scheme spec.md §9 calls out
// as the only intra-cluster RPC authentication this repository provides:
// every unary and streaming call between shard nodes, arbiter replicas, and
// the peer-sync path carries an HMAC-SHA256 signature and a timestamp,
// attached as gRPC metadata. A unary call's signature covers its method
// name and serialized payload; a stream's covers its method name only,
// checked once at stream open. There is no mTLS and
// no per-node identity; a single cluster-wide secret is enough to keep
// accidental cross-cluster traffic out, which is all the spec asks for.
package signing
