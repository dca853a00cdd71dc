package relayer

// sqlite models

// Height is the last block whose events were fully handled.
type Height struct {
	Id     uint64 `gorm:"primary_key" json:"id"`
	Height uint64 `json:"height"`
}

const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusExpired = "expired"
	StatusClosed  = "closed"
)

// Fulfilment records how the relayer answered one verification request.
type Fulfilment struct {
	Id        uint64 `gorm:"primary_key;auto_increment:false" json:"id"`
	Kind      uint8  `json:"kind"`
	Session   uint64 `json:"session"`
	Caller    string `json:"caller"`
	Artist    string `json:"artist"`
	Height    uint64 `json:"height"`
	ExpiresAt uint64 `json:"expires_at"`
	Status    string `gorm:"index" json:"status"`
	TxType    uint8  `json:"tx_type"`
	TxHash    string `json:"tx_hash"`
	Reason    string `json:"reason"`
}
