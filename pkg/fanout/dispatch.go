package fanout

import (
	"context"

	"github.com/groupshard/groupshard/api/proto"
	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/shard"
	"github.com/groupshard/groupshard/pkg/types"
)

// Dispatcher applies decoded fan-out messages to a shard node's live
// membership store, exactly spec.md §4.4's dispatch table.
// MsgCreateGroup/MsgChangeGroup need to pull a group's current membership
// from the user service, since the fan-out message itself only carries
// the group id.
//
// Dispatcher holds the Node rather than a *membership.Store: the store a
// node serves is swapped out from under it on every BeginMigration (see
// pkg/shard.Node.BeginMigration), so caching the pointer once at
// construction would silently strand the consumer on a discarded store
// after the node's first reshard. Calling node.Current() per dispatch
// keeps this pointed at whatever store is actually live.
type Dispatcher struct {
	node    *shard.Node
	userSvc shard.UserServiceClient
}

func NewDispatcher(node *shard.Node, userSvc shard.UserServiceClient) *Dispatcher {
	return &Dispatcher{node: node, userSvc: userSvc}
}

// loadMembers creates groupID if needed and fills it from the user
// service, per spec.md §4.4's MsgCreateGroup/MsgChangeGroup rows.
func (d *Dispatcher) loadMembers(ctx context.Context, groupID string) error {
	store := d.node.Current()
	store.Create(groupID)
	members, online, err := d.userSvc.MembersOf(ctx, groupID)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "fanout.Dispatch", err)
	}
	return store.SyncData(ctx, groupID, members, online)
}

// Dispatch decodes raw according to msgType and applies it. It returns the
// error from the underlying membership.Store call unchanged, so the
// consumer can classify it (retryable vs persistent) via errs.IsRetryable.
func (d *Dispatcher) Dispatch(ctx context.Context, msgType types.GroupNodeMsgType, raw []byte) error {
	store := d.node.Current()

	switch msgType {
	case types.MsgCreateGroup:
		var m proto.CreateGroupMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		return d.loadMembers(ctx, m.GroupID)

	case types.MsgDestroyGroup:
		var m proto.DestroyGroupMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		store.Dismiss(m.GroupID)
		return nil

	case types.MsgChangeGroup:
		var m proto.ChangeGroupMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		return d.loadMembers(ctx, m.GroupID)

	case types.MsgAddMember:
		var m proto.AddMemberMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		return store.AddMember(ctx, m.GroupID, m.Member)

	case types.MsgAddMembers:
		var m proto.AddMembersMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		return store.AddMembers(ctx, m.GroupID, m.Members)

	case types.MsgRemoveMembers:
		var m proto.RemoveMembersMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		for _, uid := range m.UIDs {
			if err := store.RemoveMember(ctx, m.GroupID, uid); err != nil {
				return err
			}
		}
		return nil

	case types.MsgChangeRole:
		var m proto.ChangeRoleMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		return store.ChangeRole(ctx, m.GroupID, m.UID, m.Role)

	case types.MsgMemberOnline:
		var m proto.MemberOnlineMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		return store.SetOnline(ctx, m.GroupID, m.UID, true)

	case types.MsgMemberOffline:
		var m proto.MemberOfflineMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		return store.SetOnline(ctx, m.GroupID, m.UID, false)

	case types.MsgMute, types.MsgUnmute:
		// Mute state belongs to the user service, not the membership
		// core; these are consumed (and offsets advanced) without a
		// store mutation so the partition doesn't stall waiting on a
		// module that doesn't exist yet.
		return nil

	case types.MsgTransferOwnership:
		var m proto.TransferOwnershipMsg
		if err := DecodeInto(raw, &m); err != nil {
			return err
		}
		return store.TransferOwnership(ctx, m.GroupID, m.OldOwner, m.NewOwner)

	default:
		return errs.New(errs.InvalidArgument, "fanout.Dispatch", "unknown message type %d", msgType)
	}
}
