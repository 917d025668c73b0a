package ledger

// TimestampLayout : wall-clock format stamped on sealed blocks
const TimestampLayout = "2006-01-02 15:04:05"

// Transaction : a transfer of a quantity of medicine between two parties
type Transaction struct {
	MedicineName string `json:"medicine_name"`
	Quantity     int    `json:"quantity"`
	From         string `json:"from"`
	To           string `json:"to"`
}

// Block : a sealed batch of transactions linked to its parent by hash
type Block struct {
	Index        int            `json:"index"`
	Timestamp    string         `json:"timestamp"`
	Transactions []*Transaction `json:"transactions"`
	Proof        int            `json:"proof"`
	PreviousHash string         `json:"previous_hash"`
}

// ChainDTO : wire form of the whole chain
type ChainDTO struct {
	Chain  []*Block `json:"chain"`
	Length int      `json:"length"`
}
