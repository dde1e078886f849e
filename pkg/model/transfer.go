package model

// TransferRequest is the body for both the preview and submit endpoints.
// AcceptExchangeRate is only meaningful on submit: it states that the user
// has seen and accepted the previewed conversion terms.
type TransferRequest struct {
	FromAccount        string  `json:"fromAccount"`
	ToAccount          string  `json:"toAccount"`
	Amount             float64 `json:"amount"`
	Description        string  `json:"description,omitempty"`
	AcceptExchangeRate bool    `json:"acceptExchangeRate,omitempty"`
}

// ExchangeInfo is the quoted conversion attached to a cross-currency preview.
type ExchangeInfo struct {
	FromCurrency    string  `json:"fromCurrency"`
	ToCurrency      string  `json:"toCurrency"`
	Rate            float64 `json:"rate"`
	ConvertedAmount float64 `json:"convertedAmount"`
}

// TransferPreview is the non-binding server quote fetched before submission.
type TransferPreview struct {
	CurrencyExchangeApplied bool          `json:"currencyExchangeApplied"`
	Exchange                *ExchangeInfo `json:"exchangeInfo,omitempty"`
}

// TransferResult is the server acknowledgment of a submitted transfer.
type TransferResult struct {
	TransactionID string  `json:"transactionId"`
	NewBalance    float64 `json:"newBalance"`
}

// ExchangeRate is the response of the currency endpoint.
type ExchangeRate struct {
	FromCurrency    string  `json:"fromCurrency"`
	ToCurrency      string  `json:"toCurrency"`
	Rate            float64 `json:"rate"`
	ConvertedAmount float64 `json:"convertedAmount"`
}
