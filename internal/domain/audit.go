package domain

// Discrepancy describes an account whose balance does not match its log.
type Discrepancy struct {
	Currency          string  `json:"currency"`
	BalanceAmount     int64   `json:"balance_amount"`
	LedgerAmount      int64   `json:"ledger_amount"`
	LastTransactionID int64   `json:"last_transaction_id"`
	Unapplied         []int64 `json:"unapplied_transaction_ids,omitempty"`
}

// AuditReport is the result of comparing the balances of a user with the log.
type AuditReport struct {
	UserID        string        `json:"user_id"`
	Consistent    bool          `json:"consistent"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}
