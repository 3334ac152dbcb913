package paymentdto

import "time"

type CheckPaymentOutput struct {
	OrderCode string `json:"orderCode"`
	Paid      bool   `json:"paid"`
}

type AutoCheckOutput struct {
	Checked      int      `json:"checked"`
	UpdatedCodes []string `json:"updated"`
	// Skipped is set when another pass held the lease.
	Skipped bool `json:"skipped,omitempty"`
}

type TransactionOutput struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	AmountIn        int64     `json:"amountIn"`
	ReferenceNumber string    `json:"referenceNumber"`
	Date            time.Time `json:"date"`
}
