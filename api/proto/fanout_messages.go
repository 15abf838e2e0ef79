package proto

import "github.com/groupshard/groupshard/pkg/types"

// Fan-out payloads carried on the group-node-msg Kafka topic, one struct
// per types.GroupNodeMsgType, matching spec.md §4.4's dispatch table.
// pkg/fanout's Codec prefixes one of these, JSON-encoded, with the
// corresponding GroupNodeMsgType byte.

type CreateGroupMsg struct {
	GroupID string `json:"group_id"`
}

type DestroyGroupMsg struct {
	GroupID string `json:"group_id"`
}

// ChangeGroupMsg is a placeholder for group-level metadata changes that
// don't affect membership; the membership core only needs the group_id to
// know the group still exists.
type ChangeGroupMsg struct {
	GroupID string `json:"group_id"`
}

type AddMemberMsg struct {
	GroupID string          `json:"group_id"`
	Member  types.MemberRef `json:"member"`
}

type AddMembersMsg struct {
	GroupID string            `json:"group_id"`
	Members []types.MemberRef `json:"members"`
}

type RemoveMembersMsg struct {
	GroupID string   `json:"group_id"`
	UIDs    []string `json:"uids"`
}

type ChangeRoleMsg struct {
	GroupID string     `json:"group_id"`
	UID     string     `json:"uid"`
	Role    types.Role `json:"role"`
}

type MemberOnlineMsg struct {
	GroupID string `json:"group_id"`
	UID     string `json:"uid"`
}

type MemberOfflineMsg struct {
	GroupID string `json:"group_id"`
	UID     string `json:"uid"`
}

// MuteMsg/UnmuteMsg are member-scoped notification mutes; the membership
// core does not track mute state itself (it belongs to the user service),
// but the fan-out consumer still dispatches them so a future notification
// module can subscribe to the same topic without a schema change.
type MuteMsg struct {
	GroupID string `json:"group_id"`
	UID     string `json:"uid"`
}

type UnmuteMsg struct {
	GroupID string `json:"group_id"`
	UID     string `json:"uid"`
}

type TransferOwnershipMsg struct {
	GroupID  string `json:"group_id"`
	OldOwner string `json:"old_owner"`
	NewOwner string `json:"new_owner"`
}
