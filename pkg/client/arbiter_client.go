package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/groupshard/groupshard/api/proto"
	"github.com/groupshard/groupshard/pkg/signing"
	"github.com/groupshard/groupshard/pkg/types"
)

// ArbiterClient is a gRPC client for proto.ArbServerRpcServiceClient. Its
// method set matches pkg/shard.ArbiterClient exactly, so a *ArbiterClient
// can be assigned anywhere that interface is expected (e.g.
// shard.NewLifecycleRunner) without an adapter.
type ArbiterClient struct {
	conn   *grpc.ClientConn
	client proto.ArbServerRpcServiceClient
}

// DialArbiter opens a signed connection to the arbiter at addr.
func DialArbiter(addr string, signer *signing.Signer) (*ArbiterClient, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(proto.CodecName)),
		grpc.WithChainUnaryInterceptor(signer.UnaryClientInterceptor()),
		grpc.WithChainStreamInterceptor(signer.StreamClientInterceptor()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial arbiter %s: %w", addr, err)
	}
	return &ArbiterClient{conn: conn, client: proto.NewArbServerRpcServiceClient(conn)}, nil
}

func (c *ArbiterClient) Close() error {
	return c.conn.Close()
}

func (c *ArbiterClient) RegisterNode(ctx context.Context, nodeAddr string, nodeType types.NodeType, kafkaAddr string) (*types.NodeEntry, error) {
	resp, err := c.client.RegisterNode(ctx, &proto.RegisterNodeRequest{
		NodeAddr:  nodeAddr,
		NodeType:  nodeType,
		KafkaAddr: kafkaAddr,
	})
	if err != nil {
		return nil, err
	}
	return resp.Node, nil
}

func (c *ArbiterClient) UpdateShardState(ctx context.Context, nodeAddr string, newState types.ShardState) (*types.NodeEntry, error) {
	resp, err := c.client.UpdateShardState(ctx, &proto.UpdateShardStateRequest{
		NodeAddr: nodeAddr,
		NewState: newState,
	})
	if err != nil {
		return nil, err
	}
	return resp.Node, nil
}

func (c *ArbiterClient) Heartbeat(ctx context.Context, nodeAddr string) error {
	_, err := c.client.Heartbeat(ctx, &proto.HeartbeatRequest{NodeAddr: nodeAddr})
	return err
}

func (c *ArbiterClient) GracefulLeave(ctx context.Context, nodeAddr string) error {
	_, err := c.client.GracefulLeave(ctx, &proto.GracefulLeaveRequest{NodeAddr: nodeAddr})
	return err
}

func (c *ArbiterClient) ListAllNodes(ctx context.Context, nodeType types.NodeType) ([]types.NodeEntry, error) {
	resp, err := c.client.ListAllNodes(ctx, &proto.ListAllNodesRequest{NodeType: nodeType})
	if err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

// WatchTopology opens the arbiter's topology event stream. Callers
// typically run this in its own goroutine and loop Recv until it errors.
func (c *ArbiterClient) WatchTopology(ctx context.Context) (proto.ArbServerRpcService_WatchTopologyClient, error) {
	return c.client.WatchTopology(ctx, &proto.WatchTopologyRequest{})
}
