package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/assetkit/assetindexer/types"
)

var upsertAll = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	UpdateAll: true,
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db        *gorm.DB
	batchSize int
}

type Option func(*GormStore)

// WithBatchSize caps the rows written per statement by PutAll.
func WithBatchSize(n int) Option {
	return func(s *GormStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	s := &GormStore{db: db, batchSize: 100}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GormStore) Get(ctx context.Context, dst Entity, id string) error {
	err := s.db.WithContext(ctx).Table(dst.TableName()).Where("id = ?", id).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return types.NewDatabaseError("get "+dst.TableName(), err)
	}
	return nil
}

func (s *GormStore) Put(ctx context.Context, e Entity) error {
	if err := s.db.WithContext(ctx).Clauses(upsertAll).Create(e).Error; err != nil {
		return types.NewDatabaseError("put "+e.TableName(), err)
	}
	return nil
}

func (s *GormStore) putBatch(ctx context.Context, table string, rows any) error {
	if err := s.db.WithContext(ctx).Clauses(upsertAll).CreateInBatches(rows, s.batchSize).Error; err != nil {
		return types.NewDatabaseError("put "+table, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, e Entity) error {
	if err := s.db.WithContext(ctx).Where("id = ?", e.EntityID()).Delete(e).Error; err != nil {
		return types.NewDatabaseError("delete "+e.TableName(), err)
	}
	return nil
}

func (s *GormStore) Append(ctx context.Context, row *types.EventStatsData) error {
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return types.NewDatabaseError("append event stats", err)
	}
	return nil
}

func (s *GormStore) Balances(ctx context.Context, asset string) ([]types.AssetBalance, error) {
	var rows []types.AssetBalance
	if err := s.db.WithContext(ctx).Where("asset = ?", asset).Order("id").Find(&rows).Error; err != nil {
		return nil, types.NewDatabaseError("list balances", err)
	}
	return rows, nil
}

func (s *GormStore) ActivityEvents(ctx context.Context, asset string) ([]types.AssetActivityEvent, error) {
	var rows []types.AssetActivityEvent
	if err := s.db.WithContext(ctx).Where("asset = ?", asset).Order("id").Find(&rows).Error; err != nil {
		return nil, types.NewDatabaseError("list activity events", err)
	}
	return rows, nil
}

func (s *GormStore) AssetIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&types.Asset{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, types.NewDatabaseError("list assets", err)
	}
	return ids, nil
}

func (s *GormStore) EventStats(ctx context.Context, filter StatsFilter) ([]types.EventStatsData, error) {
	query := s.db.WithContext(ctx).Model(&types.EventStatsData{})
	if filter.Account != "" {
		query = query.Where("account = ?", filter.Account)
	}
	if filter.EventName != "" {
		query = query.Where("event_name = ?", filter.EventName)
	}
	if !filter.From.IsZero() {
		query = query.Where("timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("timestamp < ?", filter.To)
	}

	var rows []types.EventStatsData
	if err := query.Order("timestamp").Order("id").Find(&rows).Error; err != nil {
		return nil, types.NewDatabaseError("list event stats", err)
	}
	return rows, nil
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, batchSize: s.batchSize})
	})
}
