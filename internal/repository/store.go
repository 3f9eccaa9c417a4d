package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Scope is a query predicate applied through gorm's Scopes.
type Scope = func(*gorm.DB) *gorm.DB

// Store is the generic data-access helper shared by every repository.
// It never commits on its own: callers pick the transaction scope by
// binding the Store to a *gorm.DB that is (or is not) inside a transaction.
type Store[T any] struct {
	db *gorm.DB
}

// NewStore creates a Store for entity type T.
func NewStore[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// Exists reports whether any row matches the predicates.
func (s *Store[T]) Exists(ctx context.Context, scopes ...Scope) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// Count returns the number of rows matching the predicates.
func (s *Store[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// GetOne returns the first row matching the predicates or ErrNotFound.
func (s *Store[T]) GetOne(ctx context.Context, scopes ...Scope) (*T, error) {
	var entity T
	if err := s.db.WithContext(ctx).Scopes(scopes...).First(&entity).Error; err != nil {
		return nil, translateError(err)
	}
	return &entity, nil
}

// Insert creates a single row. Associations are never written implicitly.
func (s *Store[T]) Insert(ctx context.Context, entity *T) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error)
}

// InsertMany bulk-inserts rows, filling generated fields in place.
func (s *Store[T]) InsertMany(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Create(&entities).Error)
}

// Update applies changes to the row matching the predicates and returns it re-read.
func (s *Store[T]) Update(ctx context.Context, changes map[string]interface{}, scopes ...Scope) (*T, error) {
	entity, err := s.GetOne(ctx, scopes...)
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(entity).Updates(changes).Error; err != nil {
			return nil, translateError(err)
		}
	}

	if err := s.db.WithContext(ctx).First(entity).Error; err != nil {
		return nil, translateError(err)
	}
	return entity, nil
}

// Delete removes the row matching the predicates and returns its last state.
func (s *Store[T]) Delete(ctx context.Context, scopes ...Scope) (*T, error) {
	entity, err := s.GetOne(ctx, scopes...)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Delete(entity).Error; err != nil {
		return nil, translateError(err)
	}
	return entity, nil
}

// DeleteWhere removes every row matching the predicates.
func (s *Store[T]) DeleteWhere(ctx context.Context, scopes ...Scope) (int64, error) {
	result := s.db.WithContext(ctx).Scopes(scopes...).Delete(new(T))
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// List returns every row matching the predicates. Rows are ordered by the
// predicates' ordering first and by primary key after that.
func (s *Store[T]) List(ctx context.Context, scopes ...Scope) ([]T, error) {
	entities := []T{}
	err := s.db.WithContext(ctx).
		Scopes(scopes...).
		Order(clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey}}).
		Find(&entities).Error
	if err != nil {
		return nil, translateError(err)
	}
	return entities, nil
}

// Where builds an equality or expression predicate.
func Where(query interface{}, args ...interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// OrderBy builds an ordering predicate.
func OrderBy(column string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}

// Preload eagerly loads the named associations.
func Preload(associations ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		for _, association := range associations {
			db = db.Preload(association)
		}
		return db
	}
}
