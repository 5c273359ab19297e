package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/merchant-lanes/internal/engine"
	"github.com/talgya/merchant-lanes/internal/ledger"
)

// Journal writes ledger entries as zstd-compressed JSON lines.
type Journal struct {
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	entries int
}

// CreateJournal creates or truncates the journal file at path.
func CreateJournal(path string) (*Journal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Journal{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// WriteEntry appends one entry.
func (j *Journal) WriteEntry(e ledger.Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	j.entries++
	return j.w.WriteByte('\n')
}

// WriteAccount appends every entry of an account in ledger order.
func (j *Journal) WriteAccount(a *ledger.Account) error {
	for _, e := range a.Entries() {
		if err := j.WriteEntry(e); err != nil {
			return fmt.Errorf("journal %s: %w", a.Name, err)
		}
	}
	return nil
}

// WriteSimulation appends the entries of every account in the run.
func (j *Journal) WriteSimulation(sim *engine.Simulation) error {
	for _, a := range Accounts(sim) {
		if err := j.WriteAccount(a); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of entries written.
func (j *Journal) Len() int {
	return j.entries
}

// Close flushes the journal and closes the file.
func (j *Journal) Close() error {
	flushErr := j.w.Flush()
	encErr := j.enc.Close()
	fileErr := j.f.Close()
	switch {
	case flushErr != nil:
		return flushErr
	case encErr != nil:
		return encErr
	default:
		return fileErr
	}
}

// ReadJournal decodes every entry of a journal file.
func ReadJournal(path string) ([]ledger.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []ledger.Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e ledger.Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("journal line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
