package fanout

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/log"
	"github.com/groupshard/groupshard/pkg/metrics"
	"github.com/groupshard/groupshard/pkg/types"
)

const (
	// Topic is the group-node-msg topic, spec.md §4.4.
	Topic = "group-node-msg"
	// DeadLetterTopic receives records the dispatcher classifies as a
	// persistent failure (spec.md §4.4's dead-letter mention, expanded
	// per SPEC_FULL.md §11).
	DeadLetterTopic = "group-node-msg.dlq"
	// ConsumerGroup is the shared consumer group every shard node's
	// fan-out consumer joins.
	ConsumerGroup = "im-dispatch-group"
)

// Consumer polls Topic, applies each record via a Dispatcher, and commits
// offsets manually only after a record's effect is durably applied (or
// routed to the dead letter topic). Run/Stop form a stopCh loop with
// PollFetches as the blocking wait.
type Consumer struct {
	client     *kgo.Client
	dispatcher *Dispatcher
	dlq        *Producer
	logger     zerolog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewConsumer(brokers []string, dispatcher *Dispatcher, dlq *Producer) (*Consumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(ConsumerGroup),
		kgo.ConsumeTopics(Topic),
		kgo.DisableAutoCommit(),
		kgo.OnPartitionsRevoked(func(ctx context.Context, c *kgo.Client, _ map[string][]int32) {
			c.CommitMarkedOffsets(ctx)
		}),
	)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "fanout.NewConsumer", err)
	}
	return &Consumer{
		client:     cl,
		dispatcher: dispatcher,
		dlq:        dlq,
		logger:     log.WithComponent("fanout.consumer"),
		stopCh:     make(chan struct{}),
	}, nil
}

// Run polls and dispatches until ctx is canceled or Stop is called.
func (c *Consumer) Run(ctx context.Context) {
	c.wg.Add(1)
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}

		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return
		}
		fetches.EachError(func(_ string, _ int32, err error) {
			c.logger.Error().Err(err).Msg("fetch error")
		})

		fetches.EachRecord(func(rec *kgo.Record) {
			c.handleRecord(ctx, rec)
		})

		if err := c.client.CommitMarkedOffsets(ctx); err != nil {
			c.logger.Error().Err(err).Msg("commit offsets failed")
		}
	}
}

func (c *Consumer) handleRecord(ctx context.Context, rec *kgo.Record) {
	msgType, payload, err := Decode(rec.Value)
	if err != nil {
		c.routeToDeadLetter(ctx, rec, "", err)
		return
	}

	err = c.dispatcher.Dispatch(ctx, msgType, payload)
	if err == nil {
		metrics.FanoutMessagesTotal.WithLabelValues(msgTypeLabel(msgType), "ok").Inc()
		c.client.MarkCommitRecords(rec)
		return
	}

	if errs.IsRetryable(err) {
		metrics.FanoutMessagesTotal.WithLabelValues(msgTypeLabel(msgType), "retry").Inc()
		c.logger.Warn().Err(err).Str("msg_type", msgTypeLabel(msgType)).Msg("retryable dispatch failure, will redeliver")
		return
	}

	metrics.FanoutMessagesTotal.WithLabelValues(msgTypeLabel(msgType), "dead_letter").Inc()
	c.routeToDeadLetter(ctx, rec, msgTypeLabel(msgType), err)
	c.client.MarkCommitRecords(rec)
}

func (c *Consumer) routeToDeadLetter(ctx context.Context, rec *kgo.Record, msgType string, cause error) {
	metrics.FanoutDeadLettersTotal.Inc()
	if c.dlq == nil {
		c.logger.Error().Err(cause).Msg("no dead-letter producer configured, dropping record")
		return
	}
	if err := c.dlq.ProduceDeadLetter(ctx, rec.Key, rec.Value, msgType, cause); err != nil {
		c.logger.Error().Err(err).Msg("failed to produce dead-letter record")
	}
}

func (c *Consumer) Stop() {
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	c.wg.Wait()
	c.client.Close()
}

var msgTypeLabels = map[types.GroupNodeMsgType]string{
	types.MsgCreateGroup:       "create_group",
	types.MsgDestroyGroup:      "destroy_group",
	types.MsgChangeGroup:       "change_group",
	types.MsgAddMember:         "add_member",
	types.MsgAddMembers:        "add_members",
	types.MsgRemoveMembers:     "remove_members",
	types.MsgChangeRole:        "change_role",
	types.MsgMemberOnline:      "member_online",
	types.MsgMemberOffline:     "member_offline",
	types.MsgMute:              "mute",
	types.MsgUnmute:            "unmute",
	types.MsgTransferOwnership: "transfer_ownership",
}

func msgTypeLabel(t types.GroupNodeMsgType) string {
	if s, ok := msgTypeLabels[t]; ok {
		return s
	}
	return "unknown"
}
