package decisionlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// VerifyResult holds the outcome of a hash chain verification.
type VerifyResult struct {
	Valid     bool   `json:"valid"`
	Lines     int    `json:"lines"`
	Error     string `json:"error,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
}

// Verify walks a JSONL decision log and checks every link in the hash
// chain: line 1 must point at the genesis hash, and each later line's
// prev_hash must equal the hash of the line before it. Verification
// stops at the first broken link.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	want := GenesisHash
	n := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
		line := append([]byte(nil), scanner.Bytes()...)

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return VerifyResult{
				Error:     fmt.Sprintf("parse error: %v", err),
				ErrorLine: n,
			}
		}
		if e.PrevHash != want {
			return VerifyResult{
				Error:     fmt.Sprintf("prev_hash mismatch: want %s, have %s", want, e.PrevHash),
				ErrorLine: n,
			}
		}
		want = HashLine(line)
	}
	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	return VerifyResult{Valid: true, Lines: n}
}
