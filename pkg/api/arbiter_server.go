package api

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/groupshard/groupshard/api/proto"
	"github.com/groupshard/groupshard/pkg/arbiter"
	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/events"
	"github.com/groupshard/groupshard/pkg/log"
	"github.com/groupshard/groupshard/pkg/signing"
)

// ArbiterServer implements proto.ArbServerRpcServiceServer over an
// *arbiter.Arbiter, the gRPC front door to pkg/arbiter's RegisterNode/
// UpdateShardState/Heartbeat/GracefulLeave/ListAllNodes/WatchTopology
// surface (spec.md §4.1, §6).
type ArbiterServer struct {
	arb  *arbiter.Arbiter
	grpc *grpc.Server
}

// NewArbiterServer wires signer's interceptors into a new grpc.Server and
// registers ArbiterServer on it, mirroring the teacher's NewServer
// constructor shape (build transport options, then grpc.NewServer, then
// register).
func NewArbiterServer(arb *arbiter.Arbiter, signer *signing.Signer) *ArbiterServer {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(signer.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(signer.StreamServerInterceptor()),
	)

	s := &ArbiterServer{arb: arb, grpc: grpcServer}
	proto.RegisterArbServerRpcServiceServer(grpcServer, s)
	return s
}

// Start starts the gRPC server; it blocks until Stop is called.
func (s *ArbiterServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	log.WithComponent("arbiter-api").Info().Str("addr", addr).Msg("gRPC server listening")
	return s.grpc.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *ArbiterServer) Stop() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
}

func (s *ArbiterServer) RegisterNode(ctx context.Context, req *proto.RegisterNodeRequest) (*proto.RegisterNodeResponse, error) {
	node, err := s.arb.RegisterNode(req.NodeAddr, req.NodeType, req.KafkaAddr)
	if err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.RegisterNodeResponse{Node: node}, nil
}

func (s *ArbiterServer) UpdateShardState(ctx context.Context, req *proto.UpdateShardStateRequest) (*proto.UpdateShardStateResponse, error) {
	node, err := s.arb.UpdateShardState(req.NodeAddr, req.NewState)
	if err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.UpdateShardStateResponse{Node: node}, nil
}

func (s *ArbiterServer) Heartbeat(ctx context.Context, req *proto.HeartbeatRequest) (*proto.HeartbeatResponse, error) {
	if err := s.arb.Heartbeat(req.NodeAddr); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.HeartbeatResponse{}, nil
}

func (s *ArbiterServer) GracefulLeave(ctx context.Context, req *proto.GracefulLeaveRequest) (*proto.GracefulLeaveResponse, error) {
	if err := s.arb.GracefulLeave(req.NodeAddr); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.GracefulLeaveResponse{}, nil
}

func (s *ArbiterServer) ListAllNodes(ctx context.Context, req *proto.ListAllNodesRequest) (*proto.ListAllNodesResponse, error) {
	nodes := s.arb.ListAllNodes(req.NodeType)
	return &proto.ListAllNodesResponse{Nodes: nodes}, nil
}

// WatchTopology streams every events.Event the arbiter's broker publishes
// from subscription time onward, translated to the wire TopologyEvent
// shape, until the client disconnects or the arbiter shuts down.
func (s *ArbiterServer) WatchTopology(req *proto.WatchTopologyRequest, stream proto.ArbServerRpcService_WatchTopologyServer) error {
	sub := s.arb.Subscribe()
	defer s.arb.Unsubscribe(sub)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub:
			if !ok {
				return nil
			}
			if err := stream.Send(toTopologyEvent(ev)); err != nil {
				return err
			}
		}
	}
}

func toTopologyEvent(ev *events.Event) *proto.TopologyEvent {
	return &proto.TopologyEvent{
		ID:                 ev.ID,
		Type:               string(ev.Type),
		TimestampUnixMilli: ev.Timestamp.UnixMilli(),
		NodeAddr:           ev.NodeAddr,
		State:              ev.State,
		Version:            ev.Version,
		Metadata:           ev.Metadata,
	}
}
