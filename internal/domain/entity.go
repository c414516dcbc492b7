package domain

import (
	"time"
)

// OrderRecord is the persisted form of an executed (or failed) order.
// Column set follows the orders table of the desktop app's SQLite schema.
type OrderRecord struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Exchange         string    `json:"exchange"`
	ExchangeOrderID  string    `json:"exchange_order_id" gorm:"index"`
	Symbol           string    `json:"symbol" gorm:"index"`
	Side             string    `json:"side"`
	Type             string    `json:"type"`
	Quantity         string    `json:"quantity"`
	Price            string    `json:"price"`
	Leverage         int       `json:"leverage"`
	Status           string    `json:"status"`
	FilledQuantity   string    `json:"filled_quantity"`
	AverageFillPrice string    `json:"average_fill_price"`
	RequiredMargin   string    `json:"required_margin"`
	IsPaperTrade     bool      `json:"is_paper_trade" gorm:"index"`
	VoiceCommand     string    `json:"voice_command"` // originating utterance, if any
	ErrorMessage     string    `json:"error_message"`
	CreatedAt        time.Time `json:"created_at"`
}

// SystemLog is an append-only audit line.
type SystemLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `json:"level" gorm:"index"`
	Message   string    `json:"message"`
	Context   string    `json:"context"` // JSON blob
	CreatedAt time.Time `json:"created_at"`
}

// AppSetting is a user setting (Key-Value, dot-delimited keys).
type AppSetting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
