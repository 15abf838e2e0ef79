package shard

import (
	"context"

	"github.com/groupshard/groupshard/pkg/types"
)

// ArbiterClient is the shard node's view of the arbiter's
// ArbServerRpcService. Exported as an interface, following spec.md §9's
// "Dynamic dispatch" design note, so tests drive a LifecycleRunner against
// an in-memory arbiter instead of a real gRPC connection.
type ArbiterClient interface {
	RegisterNode(ctx context.Context, nodeAddr string, nodeType types.NodeType, kafkaAddr string) (*types.NodeEntry, error)
	UpdateShardState(ctx context.Context, nodeAddr string, newState types.ShardState) (*types.NodeEntry, error)
	Heartbeat(ctx context.Context, nodeAddr string) error
	GracefulLeave(ctx context.Context, nodeAddr string) error
	ListAllNodes(ctx context.Context, nodeType types.NodeType) ([]types.NodeEntry, error)
}

// PeerClient is the per-peer connection used during Syncing: the source
// node calls SyncData on whichever peer becomes the new owner of a
// transferred group.
type PeerClient interface {
	SyncData(ctx context.Context, groupID string, members []types.MemberRef, onlineUIDs []string) error
	Close() error
}

// PeerDialer resolves a peer's node_addr into a PeerClient. The production
// implementation dials ShardRpcService over gRPC; tests substitute an
// in-memory peer registry.
type PeerDialer func(peerAddr string) (PeerClient, error)

// UserServiceClient is the external collaborator consulted on cold start
// (load_from_data, spec.md §6) to discover which groups this node now
// owns and their current membership. It is out of this core's scope, but
// its contract belongs here since the lifecycle runner depends on it.
type UserServiceClient interface {
	// GroupsOwnedBy returns every group_id whose hash(group_id) mod total
	// == index, for the cold-start replay.
	GroupsOwnedBy(ctx context.Context, index, total int) ([]string, error)
	// MembersOf returns the member set and online uids the user service
	// currently knows about for groupID.
	MembersOf(ctx context.Context, groupID string) (members []types.MemberRef, onlineUIDs []string, err error)
}
