package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/groupshard/groupshard/api/proto"
	"github.com/groupshard/groupshard/pkg/shard"
	"github.com/groupshard/groupshard/pkg/signing"
	"github.com/groupshard/groupshard/pkg/types"
)

// ShardClient is a gRPC client for proto.ShardRpcServiceClient. It
// satisfies pkg/shard.PeerClient, so DialPeer below can be used directly
// as a pkg/shard.PeerDialer in production, and it also exposes the full
// per-group surface for any caller (e.g. a future socket-gateway) that
// needs to read or mutate membership on the owning shard.
type ShardClient struct {
	conn   *grpc.ClientConn
	client proto.ShardRpcServiceClient
}

// DialShard opens a signed connection to the shard node at addr.
func DialShard(addr string, signer *signing.Signer) (*ShardClient, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(proto.CodecName)),
		grpc.WithChainUnaryInterceptor(signer.UnaryClientInterceptor()),
		grpc.WithChainStreamInterceptor(signer.StreamClientInterceptor()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial shard %s: %w", addr, err)
	}
	return &ShardClient{conn: conn, client: proto.NewShardRpcServiceClient(conn)}, nil
}

// DialPeer adapts DialShard to pkg/shard.PeerDialer's signature, binding
// signer so the lifecycle runner doesn't need to know about signing.
func DialPeer(signer *signing.Signer) shard.PeerDialer {
	return func(peerAddr string) (shard.PeerClient, error) {
		return DialShard(peerAddr, signer)
	}
}

func (c *ShardClient) Close() error {
	return c.conn.Close()
}

// SyncData implements pkg/shard.PeerClient: push a transferred group's
// full member set and online uids to this shard, which is taking
// ownership (spec.md §4.5).
func (c *ShardClient) SyncData(ctx context.Context, groupID string, members []types.MemberRef, onlineUIDs []string) error {
	_, err := c.client.SyncData(ctx, &proto.SyncDataRequest{
		GroupID:    groupID,
		Members:    members,
		OnlineUIDs: onlineUIDs,
	})
	return err
}

func (c *ShardClient) CreateGroup(ctx context.Context, groupID string) error {
	_, err := c.client.CreateGroup(ctx, &proto.CreateGroupRequest{GroupID: groupID})
	return err
}

func (c *ShardClient) DismissGroup(ctx context.Context, groupID string) error {
	_, err := c.client.DismissGroup(ctx, &proto.DismissGroupRequest{GroupID: groupID})
	return err
}

func (c *ShardClient) AddMember(ctx context.Context, groupID string, member types.MemberRef) error {
	_, err := c.client.AddMember(ctx, &proto.AddMemberRequest{GroupID: groupID, Member: member})
	return err
}

func (c *ShardClient) AddMembers(ctx context.Context, groupID string, members []types.MemberRef) error {
	_, err := c.client.AddMembers(ctx, &proto.AddMembersRequest{GroupID: groupID, Members: members})
	return err
}

func (c *ShardClient) RemoveMember(ctx context.Context, groupID, uid string) error {
	_, err := c.client.RemoveMember(ctx, &proto.RemoveMemberRequest{GroupID: groupID, UID: uid})
	return err
}

func (c *ShardClient) GetMember(ctx context.Context, groupID, uid string) (types.MemberRef, bool, error) {
	resp, err := c.client.GetMember(ctx, &proto.GetMemberRequest{GroupID: groupID, UID: uid})
	if err != nil {
		return types.MemberRef{}, false, err
	}
	return resp.Member, resp.Found, nil
}

func (c *ShardClient) GetMemberPage(ctx context.Context, groupID string, offset, limit int) ([]types.MemberRef, error) {
	resp, err := c.client.GetMemberPage(ctx, &proto.GetMemberPageRequest{GroupID: groupID, Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (c *ShardClient) GetMemberCount(ctx context.Context, groupID string) (int, error) {
	resp, err := c.client.GetMemberCount(ctx, &proto.GetMemberCountRequest{GroupID: groupID})
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *ShardClient) SetOnline(ctx context.Context, groupID, uid string, online bool) error {
	_, err := c.client.SetOnline(ctx, &proto.SetOnlineRequest{GroupID: groupID, UID: uid, Online: online})
	return err
}

func (c *ShardClient) GetOnlineMember(ctx context.Context, groupID string, offset, limit int) ([]string, error) {
	resp, err := c.client.GetOnlineMember(ctx, &proto.GetOnlineMemberRequest{GroupID: groupID, Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}
	return resp.UIDs, nil
}

func (c *ShardClient) GetOnlineCount(ctx context.Context, groupID string) (int, error) {
	resp, err := c.client.GetOnlineCount(ctx, &proto.GetOnlineCountRequest{GroupID: groupID})
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *ShardClient) ChangeRole(ctx context.Context, groupID, uid string, role types.Role) error {
	_, err := c.client.ChangeRole(ctx, &proto.ChangeRoleRequest{GroupID: groupID, UID: uid, Role: role})
	return err
}

func (c *ShardClient) GetAdminMember(ctx context.Context, groupID string) ([]string, error) {
	resp, err := c.client.GetAdminMember(ctx, &proto.GetAdminMemberRequest{GroupID: groupID})
	if err != nil {
		return nil, err
	}
	return resp.UIDs, nil
}

func (c *ShardClient) GetUserGroups(ctx context.Context, uid string, limit int) ([]string, error) {
	resp, err := c.client.GetUserGroups(ctx, &proto.GetUserGroupsRequest{UID: uid, Limit: limit})
	if err != nil {
		return nil, err
	}
	return resp.GroupIDs, nil
}

func (c *ShardClient) TransferOwnership(ctx context.Context, groupID, oldOwner, newOwner string) error {
	_, err := c.client.TransferOwnership(ctx, &proto.TransferOwnershipRequest{
		GroupID:  groupID,
		OldOwner: oldOwner,
		NewOwner: newOwner,
	})
	return err
}
