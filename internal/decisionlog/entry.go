package decisionlog

// Entry is one line in the hash-chained JSONL decision log. All fields
// are concrete types (no map[string]any) to guarantee deterministic
// json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp    string   `json:"ts"`
	Conversation string   `json:"conversation"`
	Outcome      string   `json:"outcome"`
	Confidence   float64  `json:"confidence"`
	Rules        []string `json:"rules,omitempty"`
	Resolution   string   `json:"resolution,omitempty"`
	SchemaHash   string   `json:"schema_hash"`
	PrevHash     string   `json:"prev_hash"`
}
