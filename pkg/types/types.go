package types

import "time"

// NodeType identifies the class of process registered with the arbiter.
type NodeType string

const (
	NodeTypeGroupShard    NodeType = "group_shard"
	NodeTypeSocketGateway NodeType = "socket_gateway"
	NodeTypeMsgGateway    NodeType = "msg_gateway"
)

// ShardState is the per-GroupShard-node lifecycle state tracked by the arbiter.
type ShardState string

const (
	StateRegistered       ShardState = "registered"
	StatePreparing        ShardState = "preparing"
	StateMigrating        ShardState = "migrating"
	StateSyncing          ShardState = "syncing"
	StateReady            ShardState = "ready"
	StateNormal           ShardState = "normal"
	StatePreparingOffline ShardState = "preparing_offline"
	StateOffline          ShardState = "offline"
	StateFailed           ShardState = "failed"
)

// NodeEntry is the arbiter's registry record, one per registered node.
type NodeEntry struct {
	NodeAddr       string            `json:"node_addr"`
	NodeType       NodeType          `json:"node_type"`
	Index          int               `json:"index"`
	Total          int               `json:"total"`
	State          ShardState        `json:"state"`
	Version        uint64            `json:"version"`
	LastUpdateTime int64             `json:"last_update_time"` // unix millis
	KafkaAddr      string            `json:"kafka_addr,omitempty"`
	Labels         map[string]string `json:"labels,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Role is a member's role within a group. Kept as an integer for wire compatibility.
type Role int32

const (
	RoleMember Role = 0
	RoleAdmin  Role = 1
	RoleOwner  Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	default:
		return "unknown"
	}
}

// MemberRef is the value type held within a group's member list. No other
// fields are part of the membership core; profile data lives in the external
// user service.
type MemberRef struct {
	UID  string `json:"uid"`
	Role Role   `json:"role"`
}

// GroupNodeMsgType tags the fan-out Kafka payload's first byte.
type GroupNodeMsgType byte

const (
	MsgCreateGroup       GroupNodeMsgType = 1
	MsgDestroyGroup      GroupNodeMsgType = 2
	MsgChangeGroup       GroupNodeMsgType = 3
	MsgAddMember         GroupNodeMsgType = 4
	MsgAddMembers        GroupNodeMsgType = 5
	MsgRemoveMembers     GroupNodeMsgType = 6
	MsgChangeRole        GroupNodeMsgType = 7
	MsgMemberOnline      GroupNodeMsgType = 8
	MsgMemberOffline     GroupNodeMsgType = 9
	MsgMute              GroupNodeMsgType = 10
	MsgUnmute            GroupNodeMsgType = 11
	MsgTransferOwnership GroupNodeMsgType = 12
)

// ArbiterConfig holds configuration recognized by the arbiter process.
type ArbiterConfig struct {
	BindAddr string
	DataDir  string
	LogLevel string
}

// ShardConfig holds the recognized shard-node configuration options from
// spec.md §6 (the `shard.*`, `kafka.*`, `sys.*` and `cache.*` keys).
type ShardConfig struct {
	ServerAddr     string // shard.server_addr
	ShardAddress   string // shard.shard_address
	KafkaBrokers   []string
	KafkaTopicGrp  string // kafka.topic_group
	KafkaTopicOne  string // kafka.topic_single
	LogLevel       string // sys.log_level
	BootstrapNode  int    // cache.node_id
	BootstrapTotal int    // cache.node_total
	DataDir        string
}
