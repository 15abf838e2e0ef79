/*
Package api implements the gRPC servers that expose pkg/arbiter and
pkg/shard to the rest of the cluster: ArbiterServer wraps an
*arbiter.Arbiter as a proto.ArbServerRpcServiceServer, and ShardServer
wraps a *shard.Node's membership store as a proto.ShardRpcServiceServer.

Both servers are signed per pkg/signing: NewArbiterServer/NewShardServer
install a signing.Signer's UnaryServerInterceptor and
StreamServerInterceptor via grpc.ChainUnaryInterceptor/
grpc.ChainStreamInterceptor, and every client stub in pkg/client attaches
the matching client-side interceptors.

Write operations on the arbiter only succeed on the Raft leader: each
write method of pkg/arbiter.Arbiter checks IsLeader itself and returns
an errs.Unavailable carrying the current leader's address so a follower
client can redirect.
*/
package api
