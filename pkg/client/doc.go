/*
Package client provides the gRPC clients used by shard nodes to talk to
the arbiter (ArbiterClient, satisfying pkg/shard.ArbiterClient) and to
each other during migration (ShardClient/DialShard, satisfying
pkg/shard.PeerClient, and DialPeer, returning a pkg/shard.PeerDialer).

Every call is signed per pkg/signing via grpc.WithChainUnaryInterceptor/
grpc.WithChainStreamInterceptor, matching the signature the corresponding
server in pkg/api verifies. There is no mTLS here (spec.md §9's Non-goal);
connections use insecure transport credentials and rely entirely on the
shared signing scheme to keep stray traffic out.
*/
package client
