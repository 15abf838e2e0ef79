package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/groupshard/groupshard/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketNodes    = []byte("nodes")
	bucketRegistry = []byte("registry")
	keyVersion     = []byte("arb_version")
)

// BoltStore implements Store using BoltDB. The arbiter's Raft FSM calls it
// from Apply/Snapshot/Restore; every write here happens only on committed
// log entries, so there is no need for the store itself to take locks.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "groupshard.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketNodes, bucketRegistry} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// PutNode upserts a node's registry record.
func (s *BoltStore) PutNode(node *types.NodeEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data, err := json.Marshal(node)
		if err != nil {
			return err
		}
		return b.Put([]byte(node.NodeAddr), data)
	})
}

// GetNode returns a node's registry record, or an error if it isn't present.
func (s *BoltStore) GetNode(nodeAddr string) (*types.NodeEntry, error) {
	var node types.NodeEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		data := b.Get([]byte(nodeAddr))
		if data == nil {
			return fmt.Errorf("node not found: %s", nodeAddr)
		}
		return json.Unmarshal(data, &node)
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// ListNodes returns every node currently in the registry.
func (s *BoltStore) ListNodes() ([]*types.NodeEntry, error) {
	var nodes []*types.NodeEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		return b.ForEach(func(k, v []byte) error {
			var node types.NodeEntry
			if err := json.Unmarshal(v, &node); err != nil {
				return err
			}
			nodes = append(nodes, &node)
			return nil
		})
	})
	return nodes, err
}

// DeleteNode removes a node's registry record.
func (s *BoltStore) DeleteNode(nodeAddr string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNodes)
		return b.Delete([]byte(nodeAddr))
	})
}

// GetVersion returns the current arb_version, or 0 if none has been set yet.
func (s *BoltStore) GetVersion() (uint64, error) {
	var version uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRegistry)
		data := b.Get(keyVersion)
		if data == nil {
			return nil
		}
		version = binary.BigEndian.Uint64(data)
		return nil
	})
	return version, err
}

// PutVersion persists the arb_version counter.
func (s *BoltStore) PutVersion(version uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRegistry)
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, version)
		return b.Put(keyVersion, buf)
	})
}
