package model

// SymbolMeta is static metadata about a tradeable symbol.
type SymbolMeta struct {
	Symbol   string `json:"symbol" db:"symbol"`
	Name     string `json:"name" db:"name"`
	Exchange string `json:"exchange" db:"exchange"`
	Currency string `json:"currency" db:"currency"`
	Type     string `json:"type" db:"type"` // stock, etf, index, crypto
}

// Quote is the latest traded price for a symbol.
type Quote struct {
	Symbol        string  `json:"symbol" db:"symbol"`
	Price         float64 `json:"price" db:"price"`
	Change        float64 `json:"change" db:"change"`
	ChangePercent float64 `json:"change_percent" db:"change_percent"`
	TS            int64   `json:"ts" db:"ts"` // unix seconds
}
