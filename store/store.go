package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"stocktracker/models"
)

// Store exposes the typed persistence operations the ingestion jobs need.
// Every method runs a single short-lived statement bound to the caller's
// context; there are no long transactions spanning a fetch.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListTrackedSymbols returns the full tracked set, oldest first. The set is
// bounded by the management API, so no pagination is needed.
func (s *Store) ListTrackedSymbols(ctx context.Context) ([]models.TrackedSymbol, error) {
	var symbols []models.TrackedSymbol
	if err := s.db.WithContext(ctx).Order("id").Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

// FindStockByTrackedSymbol returns the snapshot for a tracked symbol, or
// (nil, nil) when none has been created yet.
func (s *Store) FindStockByTrackedSymbol(ctx context.Context, trackedSymbolID uint) (*models.Stock, error) {
	var stock models.Stock
	err := s.db.WithContext(ctx).Where("tracked_symbol_id = ?", trackedSymbolID).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// UpsertStock inserts the snapshot on first fetch for a symbol and overwrites
// the mutable fields afterwards. Returns the persisted row.
func (s *Store) UpsertStock(ctx context.Context, stock *models.Stock) (*models.Stock, error) {
	existing, err := s.FindStockByTrackedSymbol(ctx, stock.TrackedSymbolID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if err := s.db.WithContext(ctx).Create(stock).Error; err != nil {
			return nil, err
		}
		return stock, nil
	}
	err = s.db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
		"open":         stock.Open,
		"price":        stock.Price,
		"volume":       stock.Volume,
		"last_updated": stock.LastUpdated,
	}).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Store) InsertStockHistory(ctx context.Context, history *models.StockHistory) error {
	return s.db.WithContext(ctx).Create(history).Error
}

// DeleteStockHistoryBefore removes history rows strictly older than cutoff
// and reports how many were deleted.
func (s *Store) DeleteStockHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("date < ?", cutoff).Delete(&models.StockHistory{})
	return res.RowsAffected, res.Error
}

// FindOrCreateIndicatorEvent returns the indicator row for the given calendar
// date, creating an empty one if it does not exist yet.
func (s *Store) FindOrCreateIndicatorEvent(ctx context.Context, date time.Time) (*models.IndicatorEvent, error) {
	var event models.IndicatorEvent
	err := s.db.WithContext(ctx).Where("date = ?", date).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		event = models.IndicatorEvent{Date: date}
		if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
			return nil, err
		}
		return &event, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// SetIndicatorField updates a single indicator column on an existing event
// row, leaving sibling columns untouched.
func (s *Store) SetIndicatorField(ctx context.Context, eventID uint, column string, value float64) error {
	return s.db.WithContext(ctx).
		Model(&models.IndicatorEvent{}).
		Where("id = ?", eventID).
		Update(column, value).Error
}

func (s *Store) MarketNewsExists(ctx context.Context, stockID uint, url string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.MarketNews{}).
		Where("stock_id = ? AND url = ?", stockID, url).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) InsertMarketNews(ctx context.Context, news *models.MarketNews) error {
	return s.db.WithContext(ctx).Create(news).Error
}

func (s *Store) HasCallLog(ctx context.Context, kind, symbol string, day time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.APICallLog{}).
		Where("kind = ? AND symbol = ? AND day = ?", kind, symbol, day).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) InsertCallLog(ctx context.Context, entry *models.APICallLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// DeleteCallLogsBefore removes ledger rows whose day is strictly older than
// cutoff and reports how many were deleted.
func (s *Store) DeleteCallLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("day < ?", cutoff).Delete(&models.APICallLog{})
	return res.RowsAffected, res.Error
}

// SeedTrackedSymbols inserts a starter tracked set when the table is empty.
// Symbols already present are left alone.
func (s *Store) SeedTrackedSymbols(ctx context.Context, symbols []models.TrackedSymbol) error {
	for _, sym := range symbols {
		var existing models.TrackedSymbol
		err := s.db.WithContext(ctx).Where("symbol = ?", sym.Symbol).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.db.WithContext(ctx).Create(&sym).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
