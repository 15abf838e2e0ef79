package shard

import (
	"context"

	"github.com/groupshard/groupshard/pkg/errs"
)

// LoadFromData implements spec.md §6's load_from_data cold-start path: using
// the index/total the arbiter handed back at registration, it asks the user
// service which groups this node owns and replays their membership into the
// current store. It therefore runs after Start (cmd/shard calls it once
// Start has returned). Per spec.md §7, a single group's load
// failure is logged and skipped rather than aborting the whole node.
func (r *LifecycleRunner) LoadFromData(ctx context.Context) error {
	index, total := r.node.Index(), r.node.Total()
	groupIDs, err := r.userSvc.GroupsOwnedBy(ctx, index, total)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "LoadFromData", err)
	}

	cur := r.node.Current()
	for _, groupID := range groupIDs {
		members, onlineUIDs, err := r.userSvc.MembersOf(ctx, groupID)
		if err != nil {
			r.logger.Warn().Err(err).Str("group_id", groupID).Msg("load_from_data: failed to fetch group, skipping")
			continue
		}
		cur.Create(groupID)
		if len(members) > 0 {
			if err := cur.AddMembers(ctx, groupID, members); err != nil {
				r.logger.Warn().Err(err).Str("group_id", groupID).Msg("load_from_data: failed to replay members, skipping")
				continue
			}
		}
		for _, uid := range onlineUIDs {
			_ = cur.SetOnline(ctx, groupID, uid, true)
		}
	}
	return nil
}
