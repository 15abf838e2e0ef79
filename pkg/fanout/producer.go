package fanout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/groupshard/groupshard/pkg/errs"
)

// Producer wraps a single kgo.Client used both to publish group-node-msg
// records (for tests and for any future producer-side caller) and to
// write dead-letter records for the Consumer.
type Producer struct {
	client *kgo.Client
}

func NewProducer(brokers []string) (*Producer, error) {
	// acks=all and idempotent writes are kgo's defaults.
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.ProducerBatchCompression(kgo.Lz4Compression()),
	)
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "fanout.NewProducer", err)
	}
	return &Producer{client: cl}, nil
}

// Produce publishes a single encoded fan-out message, keyed by groupID so
// all mutations for one group stay ordered within a partition.
func (p *Producer) Produce(ctx context.Context, groupID string, encoded []byte) error {
	rec := &kgo.Record{Topic: Topic, Key: []byte(groupID), Value: encoded}
	result := p.client.ProduceSync(ctx, rec)
	if err := result.FirstErr(); err != nil {
		return errs.Wrap(errs.Unavailable, "fanout.Produce", err)
	}
	return nil
}

// deadLetterEnvelope carries the original record plus the classification
// that sent it here, per SPEC_FULL.md §11's dead-letter expansion.
type deadLetterEnvelope struct {
	OriginalKey   string `json:"original_key"`
	OriginalValue []byte `json:"original_value"`
	MsgType       string `json:"msg_type,omitempty"`
	Error         string `json:"error"`
}

func (p *Producer) ProduceDeadLetter(ctx context.Context, key, value []byte, msgType string, cause error) error {
	env := deadLetterEnvelope{
		OriginalKey:   string(key),
		OriginalValue: value,
		MsgType:       msgType,
		Error:         cause.Error(),
	}
	body, err := json.Marshal(env)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, "fanout.ProduceDeadLetter", err)
	}
	rec := &kgo.Record{Topic: DeadLetterTopic, Key: key, Value: body}
	result := p.client.ProduceSync(ctx, rec)
	if err := result.FirstErr(); err != nil {
		return errs.Wrap(errs.Unavailable, "fanout.ProduceDeadLetter", err)
	}
	return nil
}

func (p *Producer) Close() {
	p.client.Close()
}
