package arbiter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/storage"
	"github.com/groupshard/groupshard/pkg/types"
	"github.com/hashicorp/raft"
)

// registryFSM implements the Raft finite state machine backing the arbiter's
// node registry. Every mutating RPC the arbiter serves (RegisterNode,
// UpdateShardState, Heartbeat, GracefulLeave) is first turned into a
// Command and proposed through Raft; Apply is the only place that actually
// touches the durable store, so every arbiter replica converges on the same
// registry regardless of which one served the original request.
type registryFSM struct {
	mu    sync.Mutex
	store storage.Store
}

func newRegistryFSM(store storage.Store) *registryFSM {
	return &registryFSM{store: store}
}

// Command is the envelope carried in a Raft log entry.
type Command struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

const (
	opRegisterNode   = "register_node"
	opUpdateState    = "update_state"
	opHeartbeat      = "heartbeat"
	opGracefulLeave  = "graceful_leave"
	opSetVersion     = "set_version"
)

// registerNodeArgs carries everything Apply needs to compute the new entry
// deterministically on every replica — the index allocation and
// last_update_time must not be recomputed independently by followers.
type registerNodeArgs struct {
	NodeAddr  string          `json:"node_addr"`
	NodeType  types.NodeType  `json:"node_type"`
	KafkaAddr string          `json:"kafka_addr,omitempty"`
	Index     int             `json:"index"`
	Total     int             `json:"total"`
	Now       int64           `json:"now"`
}

type updateStateArgs struct {
	NodeAddr string           `json:"node_addr"`
	NewState types.ShardState `json:"new_state"`
	Now      int64            `json:"now"`
}

type heartbeatArgs struct {
	NodeAddr string `json:"node_addr"`
	Now      int64  `json:"now"`
}

type gracefulLeaveArgs struct {
	NodeAddr string `json:"node_addr"`
	Total    int    `json:"total"`
}

// applyResult is what Apply returns; the RPC handler type-asserts it out of
// the raft.ApplyFuture response.
type applyResult struct {
	Node *types.NodeEntry
	Err  error
}

// Apply applies one committed Raft log entry to the registry.
func (f *registryFSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return applyResult{Err: errs.Wrap(errs.Fatal, "fsm.Apply", err)}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch cmd.Op {
	case opRegisterNode:
		var args registerNodeArgs
		if err := json.Unmarshal(cmd.Data, &args); err != nil {
			return applyResult{Err: errs.Wrap(errs.InvalidArgument, "fsm.register_node", err)}
		}
		return f.applyRegisterNode(args)

	case opUpdateState:
		var args updateStateArgs
		if err := json.Unmarshal(cmd.Data, &args); err != nil {
			return applyResult{Err: errs.Wrap(errs.InvalidArgument, "fsm.update_state", err)}
		}
		return f.applyUpdateState(args)

	case opHeartbeat:
		var args heartbeatArgs
		if err := json.Unmarshal(cmd.Data, &args); err != nil {
			return applyResult{Err: errs.Wrap(errs.InvalidArgument, "fsm.heartbeat", err)}
		}
		return f.applyHeartbeat(args)

	case opGracefulLeave:
		var args gracefulLeaveArgs
		if err := json.Unmarshal(cmd.Data, &args); err != nil {
			return applyResult{Err: errs.Wrap(errs.InvalidArgument, "fsm.graceful_leave", err)}
		}
		return f.applyGracefulLeave(args)

	case opSetVersion:
		var version uint64
		if err := json.Unmarshal(cmd.Data, &version); err != nil {
			return applyResult{Err: errs.Wrap(errs.InvalidArgument, "fsm.set_version", err)}
		}
		return applyResult{Err: f.store.PutVersion(version)}

	default:
		return applyResult{Err: errs.New(errs.InvalidArgument, "fsm.Apply", "unknown command: %s", cmd.Op)}
	}
}

func (f *registryFSM) applyRegisterNode(args registerNodeArgs) applyResult {
	if existing, err := f.store.GetNode(args.NodeAddr); err == nil {
		// Idempotent: an existing node_addr returns the existing entry
		// unchanged (spec.md §4.1).
		return applyResult{Node: existing}
	}

	entry := &types.NodeEntry{
		NodeAddr:       args.NodeAddr,
		NodeType:       args.NodeType,
		Index:          args.Index,
		Total:          args.Total,
		State:          types.StatePreparing,
		Version:        0,
		LastUpdateTime: args.Now,
		KafkaAddr:      args.KafkaAddr,
	}
	if err := f.store.PutNode(entry); err != nil {
		return applyResult{Err: errs.Wrap(errs.Fatal, "fsm.register_node", err)}
	}
	return applyResult{Node: entry}
}

func (f *registryFSM) applyUpdateState(args updateStateArgs) applyResult {
	entry, err := f.store.GetNode(args.NodeAddr)
	if err != nil {
		return applyResult{Err: errs.Wrap(errs.NotFound, "fsm.update_state", err)}
	}

	if !isPermittedTransition(entry.State, args.NewState) {
		return applyResult{Err: errs.New(errs.InvalidTransition, "fsm.update_state",
			"%s -> %s is not a permitted transition", entry.State, args.NewState)}
	}

	entry.State = args.NewState
	entry.Version++
	entry.LastUpdateTime = args.Now
	if err := f.store.PutNode(entry); err != nil {
		return applyResult{Err: errs.Wrap(errs.Fatal, "fsm.update_state", err)}
	}
	return applyResult{Node: entry}
}

func (f *registryFSM) applyHeartbeat(args heartbeatArgs) applyResult {
	entry, err := f.store.GetNode(args.NodeAddr)
	if err != nil {
		return applyResult{Err: errs.Wrap(errs.NotFound, "fsm.heartbeat", err)}
	}
	entry.LastUpdateTime = args.Now
	if err := f.store.PutNode(entry); err != nil {
		return applyResult{Err: errs.Wrap(errs.Fatal, "fsm.heartbeat", err)}
	}
	return applyResult{Node: entry}
}

func (f *registryFSM) applyGracefulLeave(args gracefulLeaveArgs) applyResult {
	entry, err := f.store.GetNode(args.NodeAddr)
	if err != nil {
		return applyResult{Err: errs.Wrap(errs.NotFound, "fsm.graceful_leave", err)}
	}
	if err := f.store.DeleteNode(args.NodeAddr); err != nil {
		return applyResult{Err: errs.Wrap(errs.Fatal, "fsm.graceful_leave", err)}
	}
	return applyResult{Node: entry}
}

// Snapshot creates a point-in-time snapshot of the registry for Raft log
// compaction.
func (f *registryFSM) Snapshot() (raft.FSMSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	nodes, err := f.store.ListNodes()
	if err != nil {
		return nil, fmt.Errorf("list nodes for snapshot: %w", err)
	}
	version, err := f.store.GetVersion()
	if err != nil {
		return nil, fmt.Errorf("get version for snapshot: %w", err)
	}

	return &registrySnapshot{Nodes: nodes, Version: version}, nil
}

// Restore rebuilds the registry from a snapshot taken on a previous leader.
func (f *registryFSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()

	var snap registrySnapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, node := range snap.Nodes {
		if err := f.store.PutNode(node); err != nil {
			return fmt.Errorf("restore node %s: %w", node.NodeAddr, err)
		}
	}
	return f.store.PutVersion(snap.Version)
}

// registrySnapshot is the serialized form persisted by Raft snapshotting.
type registrySnapshot struct {
	Nodes   []*types.NodeEntry `json:"nodes"`
	Version uint64             `json:"version"`
}

func (s *registrySnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

func (s *registrySnapshot) Release() {}
