package commonrepo

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DB is the slice of *gorm.DB the repositories depend on. Narrowing the
// surface keeps the repos testable against a fake and makes the transaction
// handle in DefaultRepo substitutable for the root connection.
type DB interface {
	Model(value any) (tx *gorm.DB)
	Create(value any) (tx *gorm.DB)
	Save(value any) (tx *gorm.DB)
	Where(query any, args ...any) (tx *gorm.DB)
	Delete(value any, conds ...any) (tx *gorm.DB)
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
	AutoMigrate(table ...any) error
	First(dest any, conds ...any) (tx *gorm.DB)
	Find(dest any, conds ...any) (tx *gorm.DB)
	Clauses(conds ...clause.Expression) (tx *gorm.DB)
	WithContext(ctx context.Context) *gorm.DB
	DB() (*sql.DB, error)

	Count(count *int64) *gorm.DB
	Updates(values any) *gorm.DB
	Update(column string, value any) *gorm.DB
	Take(dest any, conds ...any) *gorm.DB
	Last(dest any, conds ...any) *gorm.DB

	Offset(offset int) *gorm.DB
	Limit(limit int) *gorm.DB
	Order(value any) *gorm.DB
}
