package client

import (
	"context"

	"github.com/groupshard/groupshard/pkg/types"
)

// NoopUserServiceClient satisfies pkg/shard.UserServiceClient without
// contacting anything. The user service's own RPC contract is out of this
// repository's scope (spec.md §1 lists it as an external collaborator with
// only its effect on this core specified, not its own API), so there is no
// real client to generate here. A deployment wires its own
// UserServiceClient implementation against whatever that service exposes;
// this one exists so cmd/shard can start and serve fan-out traffic for
// newly created groups even with no cold-start replay source configured.
type NoopUserServiceClient struct{}

func (NoopUserServiceClient) GroupsOwnedBy(ctx context.Context, index, total int) ([]string, error) {
	return nil, nil
}

func (NoopUserServiceClient) MembersOf(ctx context.Context, groupID string) ([]types.MemberRef, []string, error) {
	return nil, nil, nil
}
