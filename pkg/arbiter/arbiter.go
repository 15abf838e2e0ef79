package arbiter

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/events"
	"github.com/groupshard/groupshard/pkg/log"
	"github.com/groupshard/groupshard/pkg/metrics"
	"github.com/groupshard/groupshard/pkg/storage"
	"github.com/groupshard/groupshard/pkg/types"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
)

// heartbeatTimeout is 3x the 10s heartbeat interval (spec.md §4.1).
const heartbeatTimeout = 30 * time.Second

// Arbiter holds the authoritative node registry behind a Raft log, so the
// arbiter itself can run as a small HA cluster of replicas instead of a
// single process of record; every mutating RPC is proposed through Raft and
// only the resulting Apply touches the registry.
type Arbiter struct {
	nodeID   string
	bindAddr string
	dataDir  string

	raft  *raft.Raft
	fsm   *registryFSM
	store storage.Store

	broker *events.Broker

	reapStop chan struct{}
	reapOnce sync.Once
}

// Config holds the arbiter's own process configuration.
type Config struct {
	NodeID   string
	BindAddr string
	DataDir  string
}

// New creates an Arbiter instance. Call Bootstrap (first node) or Join
// (subsequent nodes) before serving RPCs.
func New(cfg Config) (*Arbiter, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	broker := events.NewBroker()
	broker.Start()

	return &Arbiter{
		nodeID:   cfg.NodeID,
		bindAddr: cfg.BindAddr,
		dataDir:  cfg.DataDir,
		fsm:      newRegistryFSM(store),
		store:    store,
		broker:   broker,
		reapStop: make(chan struct{}),
	}, nil
}

// raftConfig builds the shared Raft tuning used by both Bootstrap and Join.
// Lower timeouts than hashicorp/raft's WAN-oriented defaults since the
// arbiter replicas are expected to sit on the same LAN.
func (a *Arbiter) raftConfig() *raft.Config {
	cfg := raft.DefaultConfig()
	cfg.LocalID = raft.ServerID(a.nodeID)
	cfg.HeartbeatTimeout = 500 * time.Millisecond
	cfg.ElectionTimeout = 500 * time.Millisecond
	cfg.CommitTimeout = 50 * time.Millisecond
	cfg.LeaderLeaseTimeout = 250 * time.Millisecond
	return cfg
}

func (a *Arbiter) newRaft(cfg *raft.Config) (*raft.Raft, error) {
	addr, err := net.ResolveTCPAddr("tcp", a.bindAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve bind address: %w", err)
	}
	transport, err := raft.NewTCPTransport(a.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}
	snapshotStore, err := raft.NewFileSnapshotStore(a.dataDir, 2, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("create snapshot store: %w", err)
	}
	logStore, err := raftboltdb.NewBoltStore(filepath.Join(a.dataDir, "raft-log.db"))
	if err != nil {
		return nil, fmt.Errorf("create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(a.dataDir, "raft-stable.db"))
	if err != nil {
		return nil, fmt.Errorf("create stable store: %w", err)
	}
	return raft.NewRaft(cfg, a.fsm, logStore, stableStore, snapshotStore, transport)
}

// Bootstrap initializes a new single-node arbiter Raft cluster.
func (a *Arbiter) Bootstrap() error {
	cfg := a.raftConfig()
	r, err := a.newRaft(cfg)
	if err != nil {
		return err
	}
	a.raft = r

	future := r.BootstrapCluster(raft.Configuration{
		Servers: []raft.Server{{ID: cfg.LocalID, Address: raft.ServerAddress(a.bindAddr)}},
	})
	if err := future.Error(); err != nil {
		return fmt.Errorf("bootstrap cluster: %w", err)
	}

	go a.reapLoop()
	return nil
}

// Join starts this replica's Raft instance so it can be added as a voter by
// the current leader via AddVoter; it does not contact the leader itself —
// that handshake happens over the arbiter's own gRPC surface.
func (a *Arbiter) Join() error {
	r, err := a.newRaft(a.raftConfig())
	if err != nil {
		return err
	}
	a.raft = r
	go a.reapLoop()
	return nil
}

// AddVoter adds another arbiter replica to the Raft cluster. Must be called
// on the leader.
func (a *Arbiter) AddVoter(nodeID, addr string) error {
	if !a.IsLeader() {
		return errs.New(errs.Unavailable, "AddVoter", "not the leader, current leader: %s", a.LeaderAddr())
	}
	future := a.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(addr), 0, 10*time.Second)
	return future.Error()
}

// Shutdown stops the reaper and the Raft instance.
func (a *Arbiter) Shutdown() error {
	a.reapOnce.Do(func() { close(a.reapStop) })
	a.broker.Stop()
	if a.raft != nil {
		return a.raft.Shutdown().Error()
	}
	return a.store.Close()
}

// IsLeader reports whether this replica is the current Raft leader.
func (a *Arbiter) IsLeader() bool {
	return a.raft != nil && a.raft.State() == raft.Leader
}

// LeaderAddr returns the address of the current Raft leader, or "" if none
// is known yet.
func (a *Arbiter) LeaderAddr() string {
	if a.raft == nil {
		return ""
	}
	return string(a.raft.Leader())
}

// RaftStats exposes the subset of Raft statistics pkg/metrics.Collector
// samples.
func (a *Arbiter) RaftStats() map[string]uint64 {
	if a.raft == nil {
		return nil
	}
	stats := map[string]uint64{
		"last_log_index": a.raft.LastIndex(),
		"applied_index":  a.raft.AppliedIndex(),
	}
	if cf := a.raft.GetConfiguration(); cf.Error() == nil {
		stats["num_peers"] = uint64(len(cf.Configuration().Servers))
	}
	return stats
}

// Version returns the registry's current arb_version.
func (a *Arbiter) Version() uint64 {
	v, err := a.store.GetVersion()
	if err != nil {
		return 0
	}
	return v
}

// Subscribe returns a topology-event subscription for the WatchTopology RPC.
func (a *Arbiter) Subscribe() events.Subscriber {
	return a.broker.Subscribe()
}

// Unsubscribe releases a topology-event subscription.
func (a *Arbiter) Unsubscribe(sub events.Subscriber) {
	a.broker.Unsubscribe(sub)
}

func (a *Arbiter) apply(cmd Command) applyResult {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RaftApplyDuration)

	if a.raft == nil {
		return applyResult{Err: errs.New(errs.Unavailable, "apply", "raft not initialized")}
	}
	data, err := marshalCommand(cmd)
	if err != nil {
		return applyResult{Err: errs.Wrap(errs.InvalidArgument, "apply", err)}
	}
	future := a.raft.Apply(data, 5*time.Second)
	if err := future.Error(); err != nil {
		return applyResult{Err: errs.Wrap(errs.Unavailable, "apply", err)}
	}
	resp, _ := future.Response().(applyResult)
	return resp
}

// RegisterNode implements spec.md §4.1's RegisterNode. Duplicate registers
// of the same node_addr are idempotent (handled inside Apply).
func (a *Arbiter) RegisterNode(nodeAddr string, nodeType types.NodeType, kafkaAddr string) (*types.NodeEntry, error) {
	if !a.IsLeader() {
		return nil, errs.New(errs.Unavailable, "RegisterNode", "not the leader, current leader: %s", a.LeaderAddr())
	}
	if nodeAddr == "" {
		return nil, errs.New(errs.InvalidArgument, "RegisterNode", "node_addr must not be empty")
	}

	if existing, err := a.lookupNode(nodeAddr); err == nil {
		return existing, nil
	}

	index, total, err := a.nextIndexAndTotal(nodeType)
	if err != nil {
		return nil, err
	}

	args := registerNodeArgs{
		NodeAddr:  nodeAddr,
		NodeType:  nodeType,
		KafkaAddr: kafkaAddr,
		Index:     index,
		Total:     total,
		Now:       time.Now().UnixMilli(),
	}
	data, err := marshalArgs(opRegisterNode, args)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, "RegisterNode", err)
	}
	result := a.apply(Command{Op: opRegisterNode, Data: data})
	if result.Err != nil {
		return nil, result.Err
	}

	if nodeType == types.NodeTypeGroupShard {
		a.broker.Publish(&events.Event{
			ID:       uuid.NewString(),
			Type:     events.EventNodeRegistered,
			NodeAddr: nodeAddr,
			Version:  a.Version(),
			Metadata: map[string]string{"total": fmt.Sprint(total)},
		})
	}

	log.WithComponent("arbiter").Info().
		Str("node_addr", nodeAddr).Int("index", result.Node.Index).Int("total", result.Node.Total).
		Msg("node registered")

	return result.Node, nil
}

// UpdateShardState implements spec.md §4.1's UpdateShardState, including
// the all-Normal arb_version advancement rule.
func (a *Arbiter) UpdateShardState(nodeAddr string, newState types.ShardState) (*types.NodeEntry, error) {
	if !a.IsLeader() {
		return nil, errs.New(errs.Unavailable, "UpdateShardState", "not the leader, current leader: %s", a.LeaderAddr())
	}

	before, err := a.lookupNode(nodeAddr)
	if err != nil {
		return nil, err
	}

	args := updateStateArgs{NodeAddr: nodeAddr, NewState: newState, Now: time.Now().UnixMilli()}
	data, err := marshalArgs(opUpdateState, args)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, "UpdateShardState", err)
	}
	result := a.apply(Command{Op: opUpdateState, Data: data})
	if result.Err != nil {
		return nil, result.Err
	}

	metrics.StateTransitionsTotal.WithLabelValues(string(before.State), string(newState)).Inc()

	a.broker.Publish(&events.Event{
		ID:       uuid.NewString(),
		Type:     events.EventNodeStateChanged,
		NodeAddr: nodeAddr,
		State:    string(newState),
		Version:  a.Version(),
	})

	if result.Node.NodeType == types.NodeTypeGroupShard && newState == types.StateNormal {
		if err := a.maybeAdvanceVersion(); err != nil {
			log.Error(fmt.Sprintf("advance arb_version: %v", err))
		}
	}

	return result.Node, nil
}

// Heartbeat implements spec.md §4.1's Heartbeat.
func (a *Arbiter) Heartbeat(nodeAddr string) error {
	if !a.IsLeader() {
		return errs.New(errs.Unavailable, "Heartbeat", "not the leader, current leader: %s", a.LeaderAddr())
	}
	args := heartbeatArgs{NodeAddr: nodeAddr, Now: time.Now().UnixMilli()}
	data, err := marshalArgs(opHeartbeat, args)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, "Heartbeat", err)
	}
	result := a.apply(Command{Op: opHeartbeat, Data: data})
	if result.Err == nil {
		metrics.NodeHeartbeatsTotal.WithLabelValues(nodeAddr).Inc()
	}
	return result.Err
}

// GracefulLeave implements spec.md §4.1's GracefulLeave.
func (a *Arbiter) GracefulLeave(nodeAddr string) error {
	if !a.IsLeader() {
		return errs.New(errs.Unavailable, "GracefulLeave", "not the leader, current leader: %s", a.LeaderAddr())
	}

	entry, err := a.lookupNode(nodeAddr)
	if err != nil {
		return err
	}

	total, err := a.countNodesOfType(entry.NodeType)
	if err != nil {
		return err
	}
	args := gracefulLeaveArgs{NodeAddr: nodeAddr, Total: total - 1}
	data, err := marshalArgs(opGracefulLeave, args)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, "GracefulLeave", err)
	}
	result := a.apply(Command{Op: opGracefulLeave, Data: data})
	if result.Err != nil {
		return result.Err
	}

	if entry.NodeType == types.NodeTypeGroupShard {
		a.broker.Publish(&events.Event{
			ID:       uuid.NewString(),
			Type:     events.EventNodeReaped,
			NodeAddr: nodeAddr,
			Version:  a.Version(),
			Metadata: map[string]string{"total": fmt.Sprint(total - 1)},
		})
	}
	return nil
}

// ListAllNodes returns every registered entry of the given type, or every
// entry if nodeType is "".
func (a *Arbiter) ListAllNodes(nodeType types.NodeType) []types.NodeEntry {
	nodes := a.listNodes()
	if nodeType == "" {
		result := make([]types.NodeEntry, len(nodes))
		for i, n := range nodes {
			result[i] = *n
		}
		return result
	}
	var result []types.NodeEntry
	for _, n := range nodes {
		if n.NodeType == nodeType {
			result = append(result, *n)
		}
	}
	return result
}

func (a *Arbiter) listNodes() []*types.NodeEntry {
	nodes, err := a.store.ListNodes()
	if err != nil {
		return nil
	}
	return nodes
}

func (a *Arbiter) lookupNode(nodeAddr string) (*types.NodeEntry, error) {
	entry, err := a.store.GetNode(nodeAddr)
	if err != nil {
		return nil, errs.Wrap(errs.NotFound, "lookupNode", err)
	}
	return entry, nil
}

func (a *Arbiter) countNodesOfType(nodeType types.NodeType) (int, error) {
	nodes := a.listNodes()
	count := 0
	for _, n := range nodes {
		if n.NodeType == nodeType {
			count++
		}
	}
	return count, nil
}

// nextIndexAndTotal allocates the smallest non-negative integer not
// currently used as index within nodeType (spec.md §4.1), and the
// resulting total count of that type after the new node joins.
func (a *Arbiter) nextIndexAndTotal(nodeType types.NodeType) (int, int, error) {
	nodes := a.listNodes()
	used := make(map[int]bool)
	count := 0
	for _, n := range nodes {
		if n.NodeType == nodeType {
			used[n.Index] = true
			count++
		}
	}
	index := 0
	for used[index] {
		index++
	}
	return index, count + 1, nil
}

// maybeAdvanceVersion bumps arb_version when every registered GroupShard
// node is Normal (spec.md I6 / §4.1).
func (a *Arbiter) maybeAdvanceVersion() error {
	nodes := a.listNodes()
	shardCount := 0
	for _, n := range nodes {
		if n.NodeType != types.NodeTypeGroupShard {
			continue
		}
		shardCount++
		if n.State != types.StateNormal {
			return nil
		}
	}
	if shardCount == 0 {
		return nil
	}

	next := a.Version() + 1
	data, err := marshalArgs(opSetVersion, next)
	if err != nil {
		return err
	}
	result := a.apply(Command{Op: opSetVersion, Data: data})
	if result.Err != nil {
		return result.Err
	}

	metrics.RegistryVersion.Set(float64(next))
	a.broker.Publish(&events.Event{
		ID:      uuid.NewString(),
		Type:    events.EventVersionAdvanced,
		Version: next,
	})
	return nil
}

// reapLoop runs on the leader only, removing nodes whose last heartbeat is
// older than heartbeatTimeout, exactly as GracefulLeave would (spec.md
// §4.1 "Failure semantics").
func (a *Arbiter) reapLoop() {
	ticker := time.NewTicker(heartbeatTimeout / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.IsLeader() {
				continue
			}
			a.reapStale()
		case <-a.reapStop:
			return
		}
	}
}

func (a *Arbiter) reapStale() {
	now := time.Now().UnixMilli()
	cutoff := now - heartbeatTimeout.Milliseconds()

	var stale []string
	nodeTypes := make(map[string]types.NodeType)
	for _, n := range a.listNodes() {
		if n.LastUpdateTime < cutoff {
			stale = append(stale, n.NodeAddr)
			nodeTypes[n.NodeAddr] = n.NodeType
		}
	}
	sort.Strings(stale)
	for _, addr := range stale {
		if err := a.GracefulLeave(addr); err != nil {
			log.Error(fmt.Sprintf("reap %s: %v", addr, err))
			continue
		}
		metrics.NodeReapedTotal.WithLabelValues(string(nodeTypes[addr])).Inc()
	}
}
