package scenario

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v3"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"
)

// Store persists named scenario definitions and the lz4-compressed binary
// delivery log from their last run, so a CLI invocation can recall a
// previous scenario and its outcome without re-decoding JSON or re-running
// it (mirrors cmn/archive's lz4 writer usage for archived object streams,
// here applied to the recorder's delivery log instead of object bytes).
type Store struct {
	db *buntdb.DB
}

// OpenStore opens (creating if absent) the buntdb file at path. Pass ":memory:"
// for a process-local, non-persistent store.
func OpenStore(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "scenario: open store")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveScenario persists the raw JSON for a named scenario.
func (s *Store) SaveScenario(name string, raw []byte) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(scenarioKey(name), string(raw), nil)
		return err
	})
}

// LoadScenario retrieves a previously-saved scenario's raw JSON.
func (s *Store) LoadScenario(name string) ([]byte, error) {
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(scenarioKey(name))
		if err != nil {
			return err
		}
		raw = v
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scenario: load %q", name)
	}
	return []byte(raw), nil
}

// SaveLog lz4-compresses log and persists it under name's run-log key.
func (s *Store) SaveLog(name string, log []byte) error {
	var compressed bytes.Buffer
	w := lz4.NewWriter(&compressed)
	if _, err := w.Write(log); err != nil {
		return errors.Wrap(err, "scenario: compress log")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "scenario: compress log")
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(logKey(name), compressed.String(), nil)
		return err
	})
}

// LoadLog retrieves and decompresses name's persisted run log.
func (s *Store) LoadLog(name string) ([]byte, error) {
	var compressed string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(logKey(name))
		if err != nil {
			return err
		}
		compressed = v
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scenario: load log %q", name)
	}
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader([]byte(compressed))))
	if err != nil {
		return nil, errors.Wrapf(err, "scenario: decompress log %q", name)
	}
	return out, nil
}

func scenarioKey(name string) string { return "scenario:" + name }
func logKey(name string) string      { return "log:" + name }
