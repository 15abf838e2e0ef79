package storage

import (
	"github.com/groupshard/groupshard/pkg/types"
)

// Store defines the durable registry storage the arbiter's Raft FSM applies
// committed log entries to. It holds only the node registry and the
// monotonic arb_version counter; group membership itself is never
// durably replicated (see SPEC_FULL.md §3, Non-goals).
type Store interface {
	// Nodes
	PutNode(node *types.NodeEntry) error
	GetNode(nodeAddr string) (*types.NodeEntry, error)
	ListNodes() ([]*types.NodeEntry, error)
	DeleteNode(nodeAddr string) error

	// Registry version (arb_version)
	GetVersion() (uint64, error)
	PutVersion(version uint64) error

	Close() error
}
