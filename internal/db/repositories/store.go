package repositories

import (
	"context"
	"errors"

	gormModels "flighttest/ftias/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// dataPointBatchSize bounds the rows per INSERT statement.
const dataPointBatchSize = 500

// Store opens transactions for multi-step writes.
type Store struct {
	db *gormlib.DB
}

func NewStore(db *gormlib.DB) *Store {
	return &Store{db: db}
}

// WithinTransaction runs fn in one database transaction. The transaction
// commits when fn returns nil and rolls back on an error or panic.
func (s *Store) WithinTransaction(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		return fn(&UnitOfWork{tx: tx})
	})
}

// UnitOfWork is the persistence an upload writes through. It is bound to a
// single transaction and must not outlive it.
type UnitOfWork struct {
	tx *gormlib.DB
}

// FindParameterByName returns nil, nil when no parameter has that exact name.
func (u *UnitOfWork) FindParameterByName(ctx context.Context, name string) (*gormModels.Parameter, error) {
	var param gormModels.Parameter

	err := u.tx.WithContext(ctx).
		Where("name = ?", name).
		First(&param).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &param, nil
}

func (u *UnitOfWork) CreateParameter(ctx context.Context, param *gormModels.Parameter) error {
	return u.tx.WithContext(ctx).Create(param).Error
}

func (u *UnitOfWork) SaveParameter(ctx context.Context, param *gormModels.Parameter) error {
	return u.tx.WithContext(ctx).Save(param).Error
}

func (u *UnitOfWork) InsertDataPoints(ctx context.Context, points []gormModels.DataPoint) error {
	if len(points) == 0 {
		return nil
	}
	return u.tx.WithContext(ctx).
		Omit(clause.Associations).
		CreateInBatches(points, dataPointBatchSize).Error
}
