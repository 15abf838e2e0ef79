// Package proto holds the wire types and service descriptors for
// ArbServerRpcService (shard node <-> arbiter) and ShardRpcService (shard
// node <-> shard node peer), plus the fan-out message payloads carried on
// the `group-node-msg` Kafka topic.
//
// The two `.proto` files checked in alongside this package (arbiter.proto,
// shard.proto) are the source-of-truth contracts; this package's Go types
// are hand-authored rather than protoc-generated, since no protoc
// invocation is available in this environment. Rather than hand-fabricate
// protoc-gen-go's internal protoreflect machinery (which would be
// indistinguishable from a vendored fake and impossible to verify without
// the compiler), every message here is a plain Go struct and the gRPC
// services use a custom grpc/encoding.Codec (see codec.go) that marshals
// with encoding/json instead of the protobuf wire format. The service
// descriptors, method/stream handlers, and client stubs are still
// hand-written in the shape protoc-gen-go-grpc would produce, so the real
// grpc.Server/grpc.ClientConn machinery — interceptors, streaming,
// metadata, codes — is fully exercised. See DESIGN.md's api/proto entry
// for the full rationale.
package proto
