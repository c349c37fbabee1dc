package domain

// TransactionRecord is a retrieved ledger transaction reduced to the fields
// the tracer consumes. AccountKeys is the ordered participant list from the
// transaction message; it is nil when the node returned a record without the
// expected structure, and such records contribute nothing to the graph.
type TransactionRecord struct {
	Signature   string   `json:"signature"`
	Slot        uint64   `json:"slot"`
	BlockTime   *int64   `json:"blockTime,omitempty"`
	AccountKeys []string `json:"accountKeys,omitempty"`
}

// HasParticipants reports whether the record carries a usable participant list.
func (r TransactionRecord) HasParticipants() bool {
	return len(r.AccountKeys) > 0
}
