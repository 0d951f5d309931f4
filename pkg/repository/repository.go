// Package repository provides a generic gorm-backed store with explicit
// transaction boundaries.
package repository

import (
	"context"

	"github.com/smallbiznis/hotelpms/pkg/db/option"
	"gorm.io/gorm"
)

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Get(ctx context.Context, id any) (*T, error)
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, id any, patch map[string]any) error
	Delete(ctx context.Context, id any) error
	Count(ctx context.Context, query *T) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
	BatchUpdate(ctx context.Context, resources []*T) error
}

// Transaction runs fn inside one database transaction. Every store obtained
// through WithTrx(tx) inside fn commits or rolls back together.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
