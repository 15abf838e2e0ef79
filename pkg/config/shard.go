package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/types"
)

// shardFile is the on-disk YAML shape for a shard node's config file,
// spec.md §6's `shard.*`/`kafka.*`/`sys.*`/`cache.*` keys.
type shardFile struct {
	Shard struct {
		ServerAddr   string `yaml:"server_addr"`
		ShardAddress string `yaml:"shard_address"`
	} `yaml:"shard"`
	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		TopicGroup  string   `yaml:"topic_group"`
		TopicSingle string   `yaml:"topic_single"`
	} `yaml:"kafka"`
	Sys struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"sys"`
	Cache struct {
		NodeID    int `yaml:"node_id"`
		NodeTotal int `yaml:"node_total"`
	} `yaml:"cache"`
	DataDir string `yaml:"data_dir"`
}

// LoadShardConfig reads path and applies any SHARD_/KAFKA_/SYS_/CACHE_
// environment overrides, then returns the resolved types.ShardConfig.
func LoadShardConfig(path string) (*types.ShardConfig, error) {
	var f shardFile
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, "LoadShardConfig", err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, "LoadShardConfig", err)
		}
	}

	cfg := &types.ShardConfig{
		ServerAddr:     f.Shard.ServerAddr,
		ShardAddress:   f.Shard.ShardAddress,
		KafkaBrokers:   f.Kafka.Brokers,
		KafkaTopicGrp:  f.Kafka.TopicGroup,
		KafkaTopicOne:  f.Kafka.TopicSingle,
		LogLevel:       f.Sys.LogLevel,
		BootstrapNode:  f.Cache.NodeID,
		BootstrapTotal: f.Cache.NodeTotal,
		DataDir:        f.DataDir,
	}

	applyStringOverride("SHARD_SERVER_ADDR", &cfg.ServerAddr)
	applyStringOverride("SHARD_SHARD_ADDRESS", &cfg.ShardAddress)
	applyStringListOverride("KAFKA_BROKERS", &cfg.KafkaBrokers)
	applyStringOverride("KAFKA_TOPIC_GROUP", &cfg.KafkaTopicGrp)
	applyStringOverride("KAFKA_TOPIC_SINGLE", &cfg.KafkaTopicOne)
	applyStringOverride("SYS_LOG_LEVEL", &cfg.LogLevel)
	applyIntOverride("CACHE_NODE_ID", &cfg.BootstrapNode)
	applyIntOverride("CACHE_NODE_TOTAL", &cfg.BootstrapTotal)
	applyStringOverride("DATA_DIR", &cfg.DataDir)

	if cfg.KafkaTopicGrp == "" {
		cfg.KafkaTopicGrp = "group-node-msg"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func applyStringOverride(envVar string, dst *string) {
	if v, ok := os.LookupEnv(envVar); ok {
		*dst = v
	}
}

func applyStringListOverride(envVar string, dst *[]string) {
	if v, ok := os.LookupEnv(envVar); ok {
		*dst = strings.Split(v, ",")
	}
}

func applyIntOverride(envVar string, dst *int) {
	if v, ok := os.LookupEnv(envVar); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
