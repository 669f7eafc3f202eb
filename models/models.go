package models

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TrackedSymbol is a ticker the system actively monitors. Rows are managed by
// the external symbol-management API; the ingestion jobs only read them.
type TrackedSymbol struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"uniqueIndex;not null" json:"symbol"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Stock is the current-value snapshot for one tracked symbol. Exactly one row
// per TrackedSymbol, overwritten in place by the quote job.
type Stock struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	TrackedSymbolID uint            `gorm:"uniqueIndex" json:"tracked_symbol_id"`
	TrackedSymbol   TrackedSymbol   `gorm:"foreignKey:TrackedSymbolID" json:"tracked_symbol,omitempty"`
	Open            decimal.Decimal `gorm:"type:decimal(15,4)" json:"open"`
	Price           decimal.Decimal `gorm:"type:decimal(15,4)" json:"price"`
	Volume          int64           `json:"volume"`
	LastUpdated     time.Time       `json:"last_updated"`
	CreatedAt       time.Time       `json:"created_at"`
}

// StockHistory is one immutable row per successful quote fetch. Append-only;
// rows are removed only by the retention sweeper.
type StockHistory struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	StockID   uint            `gorm:"index:idx_history_stock_date" json:"stock_id"`
	Stock     Stock           `gorm:"foreignKey:StockID" json:"stock,omitempty"`
	Date      time.Time       `gorm:"index:idx_history_stock_date" json:"date"`
	Open      decimal.Decimal `gorm:"type:decimal(15,4)" json:"open"`
	Close     decimal.Decimal `gorm:"type:decimal(15,4)" json:"close"`
	Volume    int64           `json:"volume"`
	CreatedAt time.Time       `json:"created_at"`
}

// IndicatorEvent holds macro-economic indicator values for one calendar date.
// At most one row per date; each field is filled independently by its own
// fetch, so all four are nullable and siblings are never touched on update.
type IndicatorEvent struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Date             time.Time  `gorm:"uniqueIndex" json:"date"`
	FederalFundsRate null.Float `gorm:"type:decimal(10,4)" json:"federal_funds_rate"`
	TreasuryYield    null.Float `gorm:"type:decimal(10,4)" json:"treasury_yield"`
	CPI              null.Float `gorm:"type:decimal(10,4)" json:"cpi"`
	UnemploymentRate null.Float `gorm:"type:decimal(10,4)" json:"unemployment_rate"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MarketNews is a headline attached to a stock. Append-only; no two rows for
// the same stock may share a source URL.
type MarketNews struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StockID     uint      `gorm:"index:idx_news_stock_url" json:"stock_id"`
	Stock       Stock     `gorm:"foreignKey:StockID" json:"stock,omitempty"`
	Title       string    `json:"title"`
	URL         string    `gorm:"index:idx_news_stock_url" json:"url"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// APICallLog marks a provider call as already attempted for
// (kind, symbol, day). Rows are removed only by the retention sweeper.
type APICallLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Kind      string    `gorm:"index:idx_call_kind_symbol_day" json:"kind"`
	Symbol    string    `gorm:"index:idx_call_kind_symbol_day" json:"symbol"`
	Day       time.Time `gorm:"index:idx_call_kind_symbol_day" json:"day"`
	CreatedAt time.Time `json:"created_at"`
}

// MigrateModels runs database migrations for all ingestion models
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&TrackedSymbol{},
		&Stock{},
		&StockHistory{},
		&IndicatorEvent{},
		&MarketNews{},
		&APICallLog{},
	)
}
