// Package config loads the shard.*, kafka.*, sys.*, and cache.* keys
// spec.md §6 names into a types.ShardConfig, and the arbiter's bind_addr/
// data_dir/log_level into a types.ArbiterConfig. Config files are YAML
// (gopkg.in/yaml.v3, as the teacher's `warren apply` command already
// parses its resource files), and any key can be overridden by an
// environment variable. For the shard keys and sys.log_level it is the key
// upper-cased with dots replaced by underscores (shard.server_addr ->
// SHARD_SERVER_ADDR); the arbiter's bind_addr and data_dir take an
// ARBITER_ prefix (ARBITER_BIND_ADDR, ARBITER_DATA_DIR).
package config
