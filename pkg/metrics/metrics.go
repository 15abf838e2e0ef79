package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry metrics (arbiter)
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "groupshard_nodes_total",
			Help: "Total number of registered nodes by type and state",
		},
		[]string{"node_type", "state"},
	)

	RegistryVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshard_registry_version",
			Help: "Current arb_version of the registry",
		},
	)

	NodeHeartbeatsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshard_node_heartbeats_total",
			Help: "Total number of heartbeats received by node address",
		},
		[]string{"node_addr"},
	)

	NodeReapedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshard_node_reaped_total",
			Help: "Total number of nodes reaped for missed heartbeats, by node type",
		},
		[]string{"node_type"},
	)

	StateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshard_state_transitions_total",
			Help: "Total number of accepted shard-state transitions",
		},
		[]string{"from", "to"},
	)

	// Raft metrics (arbiter HA)
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshard_raft_is_leader",
			Help: "Whether this node is the Raft leader (1 = leader, 0 = follower)",
		},
	)

	RaftPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshard_raft_peers_total",
			Help: "Total number of Raft peers in the arbiter cluster",
		},
	)

	RaftLogIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshard_raft_log_index",
			Help: "Current Raft log index",
		},
	)

	RaftAppliedIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshard_raft_applied_index",
			Help: "Last applied Raft log index",
		},
	)

	RaftApplyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "groupshard_raft_apply_duration_seconds",
			Help:    "Time taken to apply a Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RaftCommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "groupshard_raft_commit_duration_seconds",
			Help:    "Time taken to commit a Raft log entry in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Arbiter RPC metrics
	ArbiterRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshard_arbiter_requests_total",
			Help: "Total number of arbiter RPC requests by method and status",
		},
		[]string{"method", "status"},
	)

	ArbiterRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "groupshard_arbiter_request_duration_seconds",
			Help:    "Arbiter RPC request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Migration metrics (shard nodes)
	MigrationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "groupshard_migration_duration_seconds",
			Help:    "Time taken for a peer-to-peer migration sync to complete",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	MigrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshard_migrations_total",
			Help: "Total number of migration attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Membership store metrics
	GroupsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshard_groups_total",
			Help: "Total number of groups held by this shard",
		},
	)

	MembersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "groupshard_members_total",
			Help: "Total number of members across all groups held by this shard",
		},
	)

	MemberListPromotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupshard_memberlist_promotions_total",
			Help: "Total number of flat-to-sharded representation promotions",
		},
	)

	MemberListDemotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupshard_memberlist_demotions_total",
			Help: "Total number of sharded-to-flat representation demotions",
		},
	)

	EpochRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshard_epoch_retries_total",
			Help: "Total number of epoch-conflict retries by mutating operation",
		},
		[]string{"operation"},
	)

	MutationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "groupshard_mutation_duration_seconds",
			Help:    "Time taken to apply a membership mutation, by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Kafka fan-out metrics
	FanoutMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "groupshard_fanout_messages_total",
			Help: "Total number of fan-out messages consumed by type and outcome",
		},
		[]string{"msg_type", "outcome"},
	)

	FanoutConsumerLag = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "groupshard_fanout_consumer_lag",
			Help: "Consumer lag in messages, by partition",
		},
		[]string{"partition"},
	)

	FanoutDeadLettersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "groupshard_fanout_dead_letters_total",
			Help: "Total number of messages routed to the dead-letter topic",
		},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(RegistryVersion)
	prometheus.MustRegister(NodeHeartbeatsTotal)
	prometheus.MustRegister(NodeReapedTotal)
	prometheus.MustRegister(StateTransitionsTotal)

	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftPeers)
	prometheus.MustRegister(RaftLogIndex)
	prometheus.MustRegister(RaftAppliedIndex)
	prometheus.MustRegister(RaftApplyDuration)
	prometheus.MustRegister(RaftCommitDuration)

	prometheus.MustRegister(ArbiterRequestsTotal)
	prometheus.MustRegister(ArbiterRequestDuration)

	prometheus.MustRegister(MigrationDuration)
	prometheus.MustRegister(MigrationsTotal)

	prometheus.MustRegister(GroupsTotal)
	prometheus.MustRegister(MembersTotal)
	prometheus.MustRegister(MemberListPromotionsTotal)
	prometheus.MustRegister(MemberListDemotionsTotal)
	prometheus.MustRegister(EpochRetriesTotal)
	prometheus.MustRegister(MutationDuration)

	prometheus.MustRegister(FanoutMessagesTotal)
	prometheus.MustRegister(FanoutConsumerLag)
	prometheus.MustRegister(FanoutDeadLettersTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
