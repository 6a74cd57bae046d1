package checkpoint

import (
	"encoding/binary"
	"fmt"
	"strings"

	dbm "github.com/cometbft/cometbft-db"
)

const (
	cursorPrefix  = "cursor/"
	relayedPrefix = "relayed/"
)

// Backend names accepted by Open.
const (
	BackendMemDB     = string(dbm.MemDBBackend)
	BackendGoLevelDB = string(dbm.GoLevelDBBackend)
)

// Store keeps per-relay cursors and the set of relayed packets in a key/value database.
type Store struct {
	db dbm.DB
}

// NewStore wraps an opened database.
func NewStore(db dbm.DB) *Store {
	return &Store{db: db}
}

// NewMemStore returns a Store that lives as long as the process.
func NewMemStore() *Store {
	return NewStore(dbm.NewMemDB())
}

// Open opens the database named "checkpoint" in dir with the given backend.
func Open(backend, dir string) (*Store, error) {
	switch backend {
	case "", BackendMemDB:
		return NewMemStore(), nil
	case BackendGoLevelDB:
		if dir == "" {
			return nil, fmt.Errorf("checkpoint directory is required for the %s backend", backend)
		}
		db, err := dbm.NewDB("checkpoint", dbm.BackendType(backend), dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open checkpoint db in %s: %w", dir, err)
		}
		return NewStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported checkpoint backend: %q", backend)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadCursor(relay string) (uint64, bool, error) {
	bz, err := s.db.Get(cursorKey(relay))
	if err != nil {
		return 0, false, err
	}
	if bz == nil {
		return 0, false, nil
	}
	if len(bz) != 8 {
		return 0, false, fmt.Errorf("corrupted cursor of relay %s: %x", relay, bz)
	}
	return binary.BigEndian.Uint64(bz), true, nil
}

func (s *Store) SaveCursor(relay string, height uint64) error {
	return s.db.SetSync(cursorKey(relay), binary.BigEndian.AppendUint64(nil, height))
}

func (s *Store) MarkRelayed(relay, srcChannel string, sequence uint64) error {
	return s.db.SetSync(relayedKey(relay, srcChannel, sequence), []byte{1})
}

func (s *Store) IsRelayed(relay, srcChannel string, sequence uint64) (bool, error) {
	return s.db.Has(relayedKey(relay, srcChannel, sequence))
}

// Relays returns the names of the relays with a stored cursor.
func (s *Store) Relays() ([]string, error) {
	it, err := dbm.IteratePrefix(s.db, []byte(cursorPrefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var relays []string
	for ; it.Valid(); it.Next() {
		relays = append(relays, strings.TrimPrefix(string(it.Key()), cursorPrefix))
	}
	return relays, it.Error()
}

func cursorKey(relay string) []byte {
	return []byte(cursorPrefix + relay)
}

// relayedKey sorts the packets of a channel by sequence.
func relayedKey(relay, srcChannel string, sequence uint64) []byte {
	key := []byte(fmt.Sprintf("%s%s/%s/", relayedPrefix, relay, srcChannel))
	return binary.BigEndian.AppendUint64(key, sequence)
}
