package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/ft-ledger/host"
)

// Creator dumps states of the ledger contracts. Output file format:
//
//	'<label>-<height>-contracts.json': JSON array of contracts' states
//	'<label>-<height>-storage.csv': CSV of contracts' storages
//
// Storage CSV are 'account,key,value' where account stands for contract
// account and binary key-value are base64-encoded.
//
// Use IterateDumps to access existing dumps.
type Creator struct {
	dumpStreams

	contracts []ContractState

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps contracts into given directory. The
// dump is identified by specified ID. Resulting Creator should be closed when
// finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.storageItemsCSV = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// AddContract adds given contract state to the resulting dump and returns
// StorageWriter for the contract storage. After all needed contracts are
// added, they should be flushed via Flush method.
func (x *Creator) AddContract(st ContractState) *StorageWriter {
	x.contracts = append(x.contracts, st)

	return &StorageWriter{
		account: st.Account,
		csv:     x.storageItemsCSV,
	}
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.contracts)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.contracts)
	if err != nil {
		return fmt.Errorf("encode contract states to JSON: %w", err)
	}

	x.storageItemsCSV.Flush()

	err = x.storageItemsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// StorageWriter writes data into the superior contract's storage dump.
type StorageWriter struct {
	account string
	csv     *csv.Writer
}

// Write saves given binary key-value into the contract dump as storage item.
func (x *StorageWriter) Write(key, value []byte) error {
	err := x.csv.Write([]string{
		x.account,
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	return nil
}

// Executor dumps storages of the given contracts of the Executor into the
// directory. Dump is labeled with the current Executor height. Returns ID of
// the created dump.
func Executor(e *host.Executor, dir, label string, contracts []ContractState) (ID, error) {
	id := ID{Label: label, Height: e.Height()}

	c, err := NewCreator(dir, id)
	if err != nil {
		return id, fmt.Errorf("init dump creator: %w", err)
	}
	defer c.Close()

	for i := range contracts {
		w := c.AddContract(contracts[i])

		err = e.IterateStorage(contracts[i].Account, w.Write)
		if err != nil {
			return id, fmt.Errorf("dump storage of %s: %w", contracts[i].Account, err)
		}
	}

	err = c.Flush()
	if err != nil {
		return id, fmt.Errorf("flush dump: %w", err)
	}

	return id, nil
}
