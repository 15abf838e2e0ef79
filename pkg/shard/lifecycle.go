package shard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/hashring"
	"github.com/groupshard/groupshard/pkg/log"
	"github.com/groupshard/groupshard/pkg/metrics"
	"github.com/groupshard/groupshard/pkg/types"
)

// Timing constants, grounded on spec.md §4.2/§5: a 10s heartbeat so the
// arbiter reaps a dead node within ~3 missed beats, a 15s reconcile tick
// that re-asserts any in-flight state the arbiter may have missed, and a
// short deadline for draining in-flight RPCs before going Offline.
const (
	heartbeatInterval    = 10 * time.Second
	reconcileInterval    = 15 * time.Second
	defaultDrainDeadline = 5 * time.Second
)

// advanceChain is the one-way walk a newly registered node takes to reach
// Normal, per spec.md §4.1's arrow set. Failure at any step moves to
// Failed instead of continuing the chain.
var advanceChain = []types.ShardState{
	types.StatePreparing,
	types.StateMigrating,
	types.StateSyncing,
	types.StateReady,
	types.StateNormal,
}

// LifecycleRunner drives a Node through the arbiter-coordinated lifecycle:
// registration, the Preparing->Migrating->Syncing->Ready->Normal climb,
// periodic heartbeats and reconciliation, and graceful departure. It is
// the Go-idiom counterpart of the original's arb_manager.rs job loop,
// built from ticker+stopCh loops.
type LifecycleRunner struct {
	node      *Node
	arbiter   ArbiterClient
	dialPeer  PeerDialer
	userSvc   UserServiceClient
	kafkaAddr string

	logger zerolog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewLifecycleRunner(node *Node, arbiter ArbiterClient, dialPeer PeerDialer, userSvc UserServiceClient, kafkaAddr string) *LifecycleRunner {
	return &LifecycleRunner{
		node:      node,
		arbiter:   arbiter,
		dialPeer:  dialPeer,
		userSvc:   userSvc,
		kafkaAddr: kafkaAddr,
		logger:    log.WithNodeAddr(node.Addr()),
		stopCh:    make(chan struct{}),
	}
}

// Start registers the node with the arbiter, climbs the lifecycle chain to
// Normal, then begins background heartbeat and reconcile loops. It returns
// once the node reaches Normal (or Failed).
func (r *LifecycleRunner) Start(ctx context.Context) error {
	entry, err := r.arbiter.RegisterNode(ctx, r.node.Addr(), types.NodeTypeGroupShard, r.kafkaAddr)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "LifecycleRunner.Start", err)
	}
	r.node.SetIndexTotal(entry.Index, entry.Total)
	r.node.SetVersion(entry.Version)
	r.node.SetState(entry.State)

	if err := r.advanceToNormal(ctx); err != nil {
		return err
	}

	r.wg.Add(2)
	go r.heartbeatLoop(ctx)
	go r.reconcileLoop(ctx)
	return nil
}

// advanceToNormal walks advanceChain from the node's current state,
// applying each state's local effect before reporting the transition to
// the arbiter. A failure at any step reports Failed and stops.
func (r *LifecycleRunner) advanceToNormal(ctx context.Context) error {
	for _, next := range advanceChain {
		if stateRank(r.node.State()) >= stateRank(next) {
			continue
		}
		if err := r.applyLocalEffect(ctx, next); err != nil {
			r.failLocally(ctx, err)
			return err
		}
		if err := r.transitionTo(ctx, next); err != nil {
			r.failLocally(ctx, err)
			return err
		}
	}
	return nil
}

func stateRank(s types.ShardState) int {
	switch s {
	case types.StateRegistered:
		return 0
	case types.StatePreparing:
		return 1
	case types.StateMigrating:
		return 2
	case types.StateSyncing:
		return 3
	case types.StateReady:
		return 4
	case types.StateNormal:
		return 5
	default:
		return -1
	}
}

// applyLocalEffect runs the node-local side effect spec.md §4.2 attaches
// to entering each state, before the transition is reported upstream.
func (r *LifecycleRunner) applyLocalEffect(ctx context.Context, next types.ShardState) error {
	switch next {
	case types.StatePreparing:
		r.node.BeginMigration()
		return nil
	case types.StateMigrating:
		return r.retainOwnedGroups(ctx)
	case types.StateSyncing:
		return r.syncTransferredGroups(ctx)
	case types.StateReady:
		r.node.EndMigration()
		return nil
	case types.StateNormal:
		return nil
	default:
		return nil
	}
}

func (r *LifecycleRunner) transitionTo(ctx context.Context, next types.ShardState) error {
	entry, err := r.arbiter.UpdateShardState(ctx, r.node.Addr(), next)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "LifecycleRunner.transitionTo", err)
	}
	r.node.SetState(entry.State)
	r.node.SetVersion(entry.Version)
	r.node.SetIndexTotal(entry.Index, entry.Total)
	r.logger.Info().Str("state", string(next)).Msg("shard state advanced")
	return nil
}

// failLocally sets the node Failed and makes a best-effort report to the
// arbiter; a failure to report Failed itself is logged and swallowed,
// since the node is already abandoning its lifecycle climb.
func (r *LifecycleRunner) failLocally(ctx context.Context, cause error) {
	r.node.SetState(types.StateFailed)
	r.logger.Error().Err(cause).Msg("shard lifecycle step failed")
	metrics.MigrationsTotal.WithLabelValues("failed").Inc()
	if _, err := r.arbiter.UpdateShardState(ctx, r.node.Addr(), types.StateFailed); err != nil {
		r.logger.Error().Err(err).Msg("failed to report Failed state to arbiter")
	}
}

// retainOwnedGroups keeps, in the snapshot store, only the groups this
// node still owns under the (possibly changed) index/total the arbiter
// just handed back; everything else is left for syncTransferredGroups to
// push to its new owner.
func (r *LifecycleRunner) retainOwnedGroups(ctx context.Context) error {
	snap := r.node.Snapshot()
	if snap == nil {
		return nil
	}
	cur := r.node.Current()
	for _, groupID := range snap.GroupIDs() {
		if !r.node.Owns(groupID) {
			continue
		}
		members, online, ok := snap.ExportGroup(groupID)
		if !ok {
			continue
		}
		cur.Create(groupID)
		if len(members) > 0 {
			if err := cur.AddMembers(ctx, groupID, members); err != nil {
				return errs.Wrap(errs.Fatal, "retainOwnedGroups", err)
			}
		}
		for _, uid := range online {
			_ = cur.SetOnline(ctx, groupID, uid, true)
		}
	}
	return nil
}

// syncTransferredGroups pushes every group the snapshot held but this node
// no longer owns to whichever peer now does, via ShardRpcService.SyncData.
func (r *LifecycleRunner) syncTransferredGroups(ctx context.Context) error {
	snap := r.node.Snapshot()
	if snap == nil {
		return nil
	}
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.MigrationDuration)

	peers, err := r.arbiter.ListAllNodes(ctx, types.NodeTypeGroupShard)
	if err != nil {
		return errs.Wrap(errs.Unavailable, "syncTransferredGroups", err)
	}
	byIndex := make(map[int]string, len(peers))
	for _, p := range peers {
		byIndex[p.Index] = p.NodeAddr
	}

	total := r.node.Total()
	for _, groupID := range snap.GroupIDs() {
		if r.node.Owns(groupID) {
			continue
		}
		targetIndex := hashring.IndexOf(groupID, total)
		addr, ok := byIndex[targetIndex]
		if !ok {
			r.logger.Warn().Str("group_id", groupID).Int("target_index", targetIndex).Msg("no peer registered for transferred group's new owner")
			continue
		}
		members, online, ok := snap.ExportGroup(groupID)
		if !ok {
			continue
		}
		err := retryPeerSync(ctx, "syncTransferredGroups", func() error {
			peer, err := r.dialPeer(addr)
			if err != nil {
				return err
			}
			defer peer.Close()
			return peer.SyncData(ctx, groupID, members, online)
		})
		if err != nil {
			metrics.MigrationsTotal.WithLabelValues("sync_failed").Inc()
			return errs.Wrap(errs.Unavailable, "syncTransferredGroups", err)
		}
	}
	metrics.MigrationsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (r *LifecycleRunner) heartbeatLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			if err := r.arbiter.Heartbeat(ctx, r.node.Addr()); err != nil {
				r.logger.Warn().Err(err).Msg("heartbeat failed")
				continue
			}
			r.node.TouchHeartbeat(time.Now().UnixMilli())
		}
	}
}

// reconcileLoop re-asserts the node's current state to the arbiter on an
// interval, covering the case where an earlier UpdateShardState call
// succeeded on the arbiter but the response was lost. Self-transitions
// the arbiter rejects as no-ops are expected and logged quietly.
func (r *LifecycleRunner) reconcileLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.reconcileOnce(ctx)
		}
	}
}

var inFlightStates = map[types.ShardState]bool{
	types.StatePreparing:        true,
	types.StateMigrating:        true,
	types.StateSyncing:          true,
	types.StateReady:            true,
	types.StatePreparingOffline: true,
}

func (r *LifecycleRunner) reconcileOnce(ctx context.Context) {
	state := r.node.State()
	if !inFlightStates[state] {
		return
	}
	if _, err := r.arbiter.UpdateShardState(ctx, r.node.Addr(), state); err != nil {
		if errs.KindOf(err) == errs.InvalidTransition {
			r.logger.Debug().Str("state", string(state)).Msg("reconcile: arbiter already past this state")
			return
		}
		r.logger.Warn().Err(err).Msg("reconcile failed")
	}
}

// Shutdown walks Normal->PreparingOffline->Offline and notifies the
// arbiter via GracefulLeave, giving in-flight RPCs defaultDrainDeadline to
// finish before the background loops are stopped.
func (r *LifecycleRunner) Shutdown(ctx context.Context) error {
	drainCtx, cancel := context.WithTimeout(ctx, defaultDrainDeadline)
	defer cancel()

	if r.node.State() == types.StateNormal {
		if err := r.transitionTo(drainCtx, types.StatePreparingOffline); err != nil {
			r.logger.Warn().Err(err).Msg("failed to enter preparing_offline during shutdown")
		} else if err := r.transitionTo(drainCtx, types.StateOffline); err != nil {
			r.logger.Warn().Err(err).Msg("failed to enter offline during shutdown")
		}
	}

	if err := r.arbiter.GracefulLeave(drainCtx, r.node.Addr()); err != nil {
		r.logger.Warn().Err(err).Msg("graceful leave failed")
	}

	r.Stop()
	return nil
}

// Stop halts the background loops without contacting the arbiter.
func (r *LifecycleRunner) Stop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
	r.wg.Wait()
}
