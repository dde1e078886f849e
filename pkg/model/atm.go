package model

// ATMRequest is the body for the deposit and withdraw endpoints.
type ATMRequest struct {
	AccountNumber string  `json:"accountNumber"`
	Amount        float64 `json:"amount"`
}

// ATMResult is the server acknowledgment of an ATM operation.
type ATMResult struct {
	TransactionID string  `json:"transactionId"`
	NewBalance    float64 `json:"newBalance"`
}
