package decisionlog

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// GenesisHash is the prev_hash for the first entry in a new decision log.
const GenesisHash = "sha256:0000000000000000000000000000000000000000000000000000000000000000"

// TimestampFormat is the wire format for entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Log is an append-only JSONL decision log with SHA-256 hash chaining.
// Each entry's prev_hash is the hash of the previous entry's JSON line,
// making any edit or deletion detectable by Verify.
type Log struct {
	mu   sync.Mutex
	file *os.File
	tail string
}

// Open opens (or creates) a decision log file for appending. An existing
// log has its chain tail recovered from the last line so new entries
// continue the chain.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("decisionlog: create directory: %w", err)
	}

	tail, err := chainTail(path)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("decisionlog: open file: %w", err)
	}

	return &Log{file: file, tail: tail}, nil
}

// chainTail returns the hash of the last line in an existing log, or the
// genesis hash for a missing or empty file.
func chainTail(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return GenesisHash, nil
		}
		return "", fmt.Errorf("decisionlog: read existing log: %w", err)
	}
	defer f.Close()

	var last []byte
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		last = append(last[:0], scanner.Bytes()...)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("decisionlog: scan existing log: %w", err)
	}
	if len(last) == 0 {
		return GenesisHash, nil
	}
	return HashLine(last), nil
}

// Record appends an entry to the log. The entry's PrevHash is always set
// by the log; Timestamp is filled in when the caller left it empty. The
// line is synced to disk before the chain tail advances.
func (l *Log) Record(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}
	entry.PrevHash = l.tail

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("decisionlog: marshal entry: %w", err)
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("decisionlog: write entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("decisionlog: sync: %w", err)
	}

	l.tail = HashLine(line)
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// HashLine returns "sha256:<hex>" of the given bytes.
func HashLine(line []byte) string {
	h := sha256.Sum256(line)
	return "sha256:" + hex.EncodeToString(h[:])
}
