package proto

import "github.com/groupshard/groupshard/pkg/types"

// ShardRpcService / ArbGroupService messages (shard.proto). These are the
// per-group membership operations a GroupShard node serves, plus the one
// peer-to-peer SyncData call used during migration (spec.md §4.5).

type CreateGroupRequest struct {
	GroupID string `json:"group_id"`
}
type CreateGroupResponse struct{}

type DismissGroupRequest struct {
	GroupID string `json:"group_id"`
}
type DismissGroupResponse struct{}

type AddMemberRequest struct {
	GroupID string          `json:"group_id"`
	Member  types.MemberRef `json:"member"`
}
type AddMemberResponse struct{}

type AddMembersRequest struct {
	GroupID string            `json:"group_id"`
	Members []types.MemberRef `json:"members"`
}
type AddMembersResponse struct{}

type RemoveMemberRequest struct {
	GroupID string `json:"group_id"`
	UID     string `json:"uid"`
}
type RemoveMemberResponse struct{}

type GetMemberRequest struct {
	GroupID string `json:"group_id"`
	UID     string `json:"uid"`
}
type GetMemberResponse struct {
	Member types.MemberRef `json:"member"`
	Found  bool            `json:"found"`
}

type GetMemberPageRequest struct {
	GroupID string `json:"group_id"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}
type GetMemberPageResponse struct {
	Members []types.MemberRef `json:"members"`
}

type GetMemberCountRequest struct {
	GroupID string `json:"group_id"`
}
type GetMemberCountResponse struct {
	Count int `json:"count"`
}

type SetOnlineRequest struct {
	GroupID string `json:"group_id"`
	UID     string `json:"uid"`
	Online  bool   `json:"online"`
}
type SetOnlineResponse struct{}

type GetOnlineMemberRequest struct {
	GroupID string `json:"group_id"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}
type GetOnlineMemberResponse struct {
	UIDs []string `json:"uids"`
}

type GetOnlineCountRequest struct {
	GroupID string `json:"group_id"`
}
type GetOnlineCountResponse struct {
	Count int `json:"count"`
}

type ChangeRoleRequest struct {
	GroupID string     `json:"group_id"`
	UID     string     `json:"uid"`
	Role    types.Role `json:"role"`
}
type ChangeRoleResponse struct{}

type GetAdminMemberRequest struct {
	GroupID string `json:"group_id"`
}
type GetAdminMemberResponse struct {
	UIDs []string `json:"uids"`
}

type GetUserGroupsRequest struct {
	UID   string `json:"uid"`
	Limit int    `json:"limit"`
}
type GetUserGroupsResponse struct {
	GroupIDs []string `json:"group_ids"`
}

type TransferOwnershipRequest struct {
	GroupID  string `json:"group_id"`
	OldOwner string `json:"old_owner"`
	NewOwner string `json:"new_owner"`
}
type TransferOwnershipResponse struct{}

// SyncData is the peer-to-peer migration call (spec.md §4.5): the source
// node of a transferred group pushes its full member set and online uids
// to the new owner.
type SyncDataRequest struct {
	GroupID    string            `json:"group_id"`
	Members    []types.MemberRef `json:"members"`
	OnlineUIDs []string          `json:"online_uids"`
}
type SyncDataResponse struct{}
