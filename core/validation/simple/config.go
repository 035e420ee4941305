package simple

import (
	"os"

	"go.dedis.ch/ledgerkit"
	"go.dedis.ch/ledgerkit/core/attachment"
	attkv "go.dedis.ch/ledgerkit/core/attachment/kv"
	attmem "go.dedis.ch/ledgerkit/core/attachment/mem"
	"go.dedis.ch/ledgerkit/core/identity"
	"go.dedis.ch/ledgerkit/core/store/kv"
	"go.dedis.ch/ledgerkit/core/txn"
	_ "go.dedis.ch/ledgerkit/core/txn/json"
	"go.dedis.ch/ledgerkit/core/txn/storage"
	txkv "go.dedis.ch/ledgerkit/core/txn/storage/kv"
	txmem "go.dedis.ch/ledgerkit/core/txn/storage/mem"
	"go.dedis.ch/ledgerkit/crypto"
	"go.dedis.ch/ledgerkit/serde/json"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

const defaultHash = "sha256"

// Config is the configuration of a validation node, usually read from a YAML
// file:
//
//	hash: sha3-256
//	workers: 4
//	maxDepth: 10
//	database: /var/lib/ledger/db
type Config struct {
	// Hash is the name of the algorithm of the transaction identifiers.
	Hash string `yaml:"hash"`

	// Workers is the number of transactions verified in parallel. Zero means
	// one per CPU and a negative value means there is no limit.
	Workers int `yaml:"workers"`

	// MaxDepth is the number of generations of ancestors verified along with
	// a transaction. Zero means the whole history.
	MaxDepth int `yaml:"maxDepth"`

	// Database is the path to the database of the stores. The stores are kept
	// in memory when it is empty.
	Database string `yaml:"database"`
}

// ParseConfig returns the configuration in the YAML data, with the defaults
// for the missing fields.
func ParseConfig(data []byte) (Config, error) {
	cfg := Config{}

	err := yaml.UnmarshalStrict(data, &cfg)
	if err != nil {
		return cfg, xerrors.Errorf("failed to unmarshal config: %v", err)
	}

	if cfg.Hash == "" {
		cfg.Hash = defaultHash
	}

	_, err = crypto.ParseHashAlgorithm(cfg.Hash)
	if err != nil {
		return cfg, xerrors.Errorf("invalid config: %v", err)
	}

	if cfg.MaxDepth < 0 {
		return cfg, xerrors.Errorf("invalid config: negative depth %d", cfg.MaxDepth)
	}

	return cfg, nil
}

// LoadConfig reads and parses the configuration file at the path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to read config file: %v", err)
	}

	return ParseConfig(data)
}

// Node is a validation service with the stores it reads from. The stores are
// exposed so that the history and the attachments can be imported.
type Node struct {
	Service

	Attachments  attachment.Storage
	Transactions storage.Storage

	db kv.DB
}

// NewNode creates the stores described by the configuration and the service
// that uses them.
func NewNode(cfg Config, identities identity.Service) (*Node, error) {
	algo, err := crypto.ParseHashAlgorithm(cfg.Hash)
	if err != nil {
		return nil, xerrors.Errorf("invalid config: %v", err)
	}

	hashFac := crypto.NewHashFactory(algo)

	node := &Node{}

	if cfg.Database == "" {
		node.Attachments = attmem.NewStorage(hashFac)
		node.Transactions = txmem.NewStorage()
	} else {
		db, err := kv.New(cfg.Database)
		if err != nil {
			return nil, xerrors.Errorf("failed to open database: %v", err)
		}

		factory := txn.NewSignedFactory(txn.WithHashFactory(hashFac))

		node.db = db
		node.Attachments = attkv.NewStorage(db, hashFac)
		node.Transactions = txkv.NewStorage(db, json.NewContext(), factory)
	}

	node.Service = NewService(identities, node.Attachments, node.Transactions,
		WithWorkers(cfg.Workers), WithMaxDepth(cfg.MaxDepth))

	ledgerkit.Logger.Debug().
		Str("hash", cfg.Hash).
		Str("database", cfg.Database).
		Int("maxDepth", cfg.MaxDepth).
		Msg("validation node created")

	return node, nil
}

// Close releases the database, if any.
func (n *Node) Close() error {
	if n.db == nil {
		return nil
	}

	err := n.db.Close()
	if err != nil {
		return xerrors.Errorf("failed to close database: %v", err)
	}

	return nil
}
