package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/nspcc-dev/ft-ledger/common"
	"github.com/nspcc-dev/ft-ledger/host"
)

// IterateDumps iterates over all contracts collected by the Creator model in
// the specified directory, and passes ID and Reader of each dump into f.
// Missing directory is treated as empty.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID
	var r Reader
	var streams dumpStreams

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, statesFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", d.Name(), err)
		}

		err = initDumpStreams(&streams, filepath.Dir(path), id, true)
		if err != nil {
			return fmt.Errorf("init dump streams ('%s'): %w", name, err)
		}

		err = r.fromDumpStreams(streams.contracts, streams.storageItems)
		streams.close()
		if err != nil {
			return fmt.Errorf("init dump reader ('%s'): %w", name, err)
		}

		f(id, &r)

		return nil
	})
}

// Reader reads contracts collected in the superior dump.
type Reader struct {
	states   []ContractState
	mStorage map[string][]host.KeyValue
}

func (x *Reader) fromDumpStreams(rContracts, rStorageItems io.Reader) error {
	x.states = x.states[:0]

	err := json.NewDecoder(rContracts).Decode(&x.states)
	if err != nil {
		return fmt.Errorf("decode contract states from JSON: %w", err)
	}

	var rec []string
	var _kv host.KeyValue

	_csv := csv.NewReader(rStorageItems)
	_csv.FieldsPerRecord = 3
	_csv.ReuseRecord = true

	if x.mStorage != nil {
		clear(x.mStorage)
	} else {
		x.mStorage = make(map[string][]host.KeyValue)
	}

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		_kv.Key, err = _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		_kv.Value, err = _encoding.DecodeString(rec[2])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		x.mStorage[rec[0]] = append(x.mStorage[rec[0]], _kv)
	}
}

// IterateContractStates iterates over all contracts from the superior dump and
// passes their states into f.
func (x *Reader) IterateContractStates(f func(ContractState)) {
	for i := range x.states {
		f(x.states[i])
	}
}

// IterateContractStorages iterates over all contracts from the superior dump
// and passes their storage items into f.
func (x *Reader) IterateContractStorages(f func(account string, key, value []byte)) {
	for account, kvs := range x.mStorage {
		for i := range kvs {
			f(account, kvs[i].Key, kvs[i].Value)
		}
	}
}

// Restore writes storages of all dumped contracts into the Executor. Contracts
// must be deployed separately. Dumps produced by incompatible contract versions
// are rejected.
func (x *Reader) Restore(e *host.Executor) error {
	for i := range x.states {
		err := common.CheckVersion(x.states[i].Version)
		if err != nil {
			return fmt.Errorf("contract %s: %w", x.states[i].Account, err)
		}
	}

	for i := range x.states {
		err := e.RestoreStorage(x.states[i].Account, x.mStorage[x.states[i].Account])
		if err != nil {
			return fmt.Errorf("restore storage of %s: %w", x.states[i].Account, err)
		}
	}

	return nil
}
