package proto

import "github.com/groupshard/groupshard/pkg/types"

// RegisterNodeRequest/Response mirror ArbServerRpcService.RegisterNode in
// arbiter.proto.
type RegisterNodeRequest struct {
	NodeAddr  string         `json:"node_addr"`
	NodeType  types.NodeType `json:"node_type"`
	KafkaAddr string         `json:"kafka_addr,omitempty"`
}

type RegisterNodeResponse struct {
	Node *types.NodeEntry `json:"node"`
}

type UpdateShardStateRequest struct {
	NodeAddr string          `json:"node_addr"`
	NewState types.ShardState `json:"new_state"`
}

type UpdateShardStateResponse struct {
	Node *types.NodeEntry `json:"node"`
}

type HeartbeatRequest struct {
	NodeAddr string `json:"node_addr"`
}

type HeartbeatResponse struct{}

type GracefulLeaveRequest struct {
	NodeAddr string `json:"node_addr"`
}

type GracefulLeaveResponse struct{}

type ListAllNodesRequest struct {
	NodeType types.NodeType `json:"node_type,omitempty"`
}

type ListAllNodesResponse struct {
	Nodes []types.NodeEntry `json:"nodes"`
}

// WatchTopologyRequest has no fields; a connected shard node just opens
// the stream and receives every TopologyEvent the arbiter publishes from
// that point on.
type WatchTopologyRequest struct{}

// TopologyEvent mirrors pkg/events.Event for the wire.
type TopologyEvent struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	TimestampUnixMilli int64    `json:"timestamp_unix_milli"`
	NodeAddr  string            `json:"node_addr,omitempty"`
	State     string            `json:"state,omitempty"`
	Version   uint64            `json:"version"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
