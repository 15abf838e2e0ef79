package api

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/groupshard/groupshard/api/proto"
	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/log"
	"github.com/groupshard/groupshard/pkg/shard"
	"github.com/groupshard/groupshard/pkg/signing"
)

// ShardServer implements proto.ShardRpcServiceServer over a *shard.Node's
// current membership store: the per-group mutation/read surface
// (spec.md §4.3, §6) plus the peer SyncData call used during migration
// (spec.md §4.5).
type ShardServer struct {
	node *shard.Node
	grpc *grpc.Server
}

// NewShardServer wires signer's interceptors into a new grpc.Server and
// registers ShardServer on it.
func NewShardServer(node *shard.Node, signer *signing.Signer) *ShardServer {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(signer.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(signer.StreamServerInterceptor()),
	)

	s := &ShardServer{node: node, grpc: grpcServer}
	proto.RegisterShardRpcServiceServer(grpcServer, s)
	return s
}

// Start starts the gRPC server; it blocks until Stop is called.
func (s *ShardServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	log.WithComponent("shard-api").Info().Str("addr", addr).Msg("gRPC server listening")
	return s.grpc.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *ShardServer) Stop() {
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
}

func (s *ShardServer) CreateGroup(ctx context.Context, req *proto.CreateGroupRequest) (*proto.CreateGroupResponse, error) {
	s.node.Current().Create(req.GroupID)
	return &proto.CreateGroupResponse{}, nil
}

func (s *ShardServer) DismissGroup(ctx context.Context, req *proto.DismissGroupRequest) (*proto.DismissGroupResponse, error) {
	s.node.Current().Dismiss(req.GroupID)
	return &proto.DismissGroupResponse{}, nil
}

func (s *ShardServer) AddMember(ctx context.Context, req *proto.AddMemberRequest) (*proto.AddMemberResponse, error) {
	if err := s.node.Current().AddMember(ctx, req.GroupID, req.Member); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.AddMemberResponse{}, nil
}

func (s *ShardServer) AddMembers(ctx context.Context, req *proto.AddMembersRequest) (*proto.AddMembersResponse, error) {
	if err := s.node.Current().AddMembers(ctx, req.GroupID, req.Members); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.AddMembersResponse{}, nil
}

func (s *ShardServer) RemoveMember(ctx context.Context, req *proto.RemoveMemberRequest) (*proto.RemoveMemberResponse, error) {
	if err := s.node.Current().RemoveMember(ctx, req.GroupID, req.UID); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.RemoveMemberResponse{}, nil
}

func (s *ShardServer) GetMember(ctx context.Context, req *proto.GetMemberRequest) (*proto.GetMemberResponse, error) {
	member, found, err := s.node.Current().GetMember(req.GroupID, req.UID)
	if err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.GetMemberResponse{Member: member, Found: found}, nil
}

func (s *ShardServer) GetMemberPage(ctx context.Context, req *proto.GetMemberPageRequest) (*proto.GetMemberPageResponse, error) {
	members, err := s.node.Current().GetMemberPage(req.GroupID, req.Offset, req.Limit)
	if err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.GetMemberPageResponse{Members: members}, nil
}

func (s *ShardServer) GetMemberCount(ctx context.Context, req *proto.GetMemberCountRequest) (*proto.GetMemberCountResponse, error) {
	count, err := s.node.Current().GetMemberCount(req.GroupID)
	if err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.GetMemberCountResponse{Count: count}, nil
}

func (s *ShardServer) SetOnline(ctx context.Context, req *proto.SetOnlineRequest) (*proto.SetOnlineResponse, error) {
	if err := s.node.Current().SetOnline(ctx, req.GroupID, req.UID, req.Online); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.SetOnlineResponse{}, nil
}

func (s *ShardServer) GetOnlineMember(ctx context.Context, req *proto.GetOnlineMemberRequest) (*proto.GetOnlineMemberResponse, error) {
	uids, err := s.node.Current().GetOnlinePage(req.GroupID, req.Offset, req.Limit)
	if err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.GetOnlineMemberResponse{UIDs: uids}, nil
}

func (s *ShardServer) GetOnlineCount(ctx context.Context, req *proto.GetOnlineCountRequest) (*proto.GetOnlineCountResponse, error) {
	count, err := s.node.Current().GetOnlineCount(req.GroupID)
	if err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.GetOnlineCountResponse{Count: count}, nil
}

func (s *ShardServer) ChangeRole(ctx context.Context, req *proto.ChangeRoleRequest) (*proto.ChangeRoleResponse, error) {
	if err := s.node.Current().ChangeRole(ctx, req.GroupID, req.UID, req.Role); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.ChangeRoleResponse{}, nil
}

func (s *ShardServer) GetAdminMember(ctx context.Context, req *proto.GetAdminMemberRequest) (*proto.GetAdminMemberResponse, error) {
	uids, err := s.node.Current().GetAdminMember(req.GroupID)
	if err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.GetAdminMemberResponse{UIDs: uids}, nil
}

func (s *ShardServer) GetUserGroups(ctx context.Context, req *proto.GetUserGroupsRequest) (*proto.GetUserGroupsResponse, error) {
	groupIDs := s.node.Current().GetUserGroups(req.UID, req.Limit)
	return &proto.GetUserGroupsResponse{GroupIDs: groupIDs}, nil
}

func (s *ShardServer) TransferOwnership(ctx context.Context, req *proto.TransferOwnershipRequest) (*proto.TransferOwnershipResponse, error) {
	if err := s.node.Current().TransferOwnership(ctx, req.GroupID, req.OldOwner, req.NewOwner); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.TransferOwnershipResponse{}, nil
}

// SyncData is the peer-to-peer migration RPC (spec.md §4.5): the calling
// node pushes a transferred group's full member set and online uids onto
// this node, which is taking ownership.
func (s *ShardServer) SyncData(ctx context.Context, req *proto.SyncDataRequest) (*proto.SyncDataResponse, error) {
	if err := s.node.Current().SyncData(ctx, req.GroupID, req.Members, req.OnlineUIDs); err != nil {
		return nil, status.Error(errs.GRPCCode(err), err.Error())
	}
	return &proto.SyncDataResponse{}, nil
}
