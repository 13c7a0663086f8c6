package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

//go:generate mockgen -source=orm.go -destination=../../../test/unit/doubles/infra/sql/orm_mock.go -package=sql -mock_names=ORM=MockORM

// ORM is the chainable subset of gorm the repositories use. Every call
// returns a new ORM; errors are read at the end of the chain with Error.
type ORM interface {
	AutoMigrate(dst ...any) error
	Count(count *int64) ORM
	Create(value any) ORM
	Delete(value any, conds ...any) ORM
	Find(dest any, conds ...any) ORM
	First(dest any, conds ...any) ORM
	Limit(limit int) ORM
	Model(value any) ORM
	Offset(offset int) ORM
	Order(value any) ORM
	Save(value any) ORM
	Transaction(fc func(tx ORM) error, opts ...*sql.TxOptions) error
	Where(query any, args ...any) ORM
	WithContext(ctx context.Context) ORM
	WithTimeout(ctx context.Context, timeout time.Duration) ORM

	Error() error
}

// DB wraps a gorm connection. system names the database engine on the
// spans of the calling request; timeout bounds every WithContext call when
// set.
type DB struct {
	*gorm.DB
	autoMigrationEnabled bool
	timeout              time.Duration
	system               string
}

var (
	ErrRecordNotFound = errors.New("record not found")
)

// Error maps gorm's not found error to ErrRecordNotFound so callers do not
// depend on gorm.
func (d DB) Error() error {
	switch {
	case errors.Is(d.DB.Error, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case d.DB.Error != nil:
		return fmt.Errorf("database error: %w", d.DB.Error)
	default:
		return nil
	}
}

var _ ORM = (*DB)(nil)

func (d DB) AutoMigrate(dst ...any) error {
	if d.autoMigrationEnabled {
		return d.DB.AutoMigrate(dst...)
	}

	return nil
}

func (d DB) Count(value *int64) ORM {
	d.traceOperation("count")
	return d.with(d.DB.Count(value))
}

func (d DB) Create(value any) ORM {
	d.traceOperation("create")
	return d.with(d.DB.Create(value))
}

func (d DB) Delete(value any, conds ...any) ORM {
	d.traceOperation("delete")
	return d.with(d.DB.Delete(value, conds...))
}

func (d DB) Find(value any, conds ...any) ORM {
	d.traceOperation("find")
	return d.with(d.DB.Find(value, conds...))
}

func (d DB) First(value any, conds ...any) ORM {
	d.traceOperation("first")
	return d.with(d.DB.First(value, conds...))
}

func (d DB) Limit(value int) ORM {
	return d.with(d.DB.Limit(value))
}

func (d DB) Model(value any) ORM {
	return d.with(d.DB.Model(value))
}

func (d DB) Offset(value int) ORM {
	return d.with(d.DB.Offset(value))
}

func (d DB) Order(value any) ORM {
	return d.with(d.DB.Order(value))
}

func (d DB) Save(value any) ORM {
	d.traceOperation("save")
	return d.with(d.DB.Save(value))
}

func (d DB) Where(value any, conds ...any) ORM {
	return d.with(d.DB.Where(value, conds...))
}

func (d DB) WithContext(value context.Context) ORM {
	if d.timeout > 0 {
		return d.WithTimeout(value, d.timeout)
	}

	return d.with(d.DB.WithContext(value))
}

func (d DB) WithTimeout(ctx context.Context, timeout time.Duration) ORM {
	return d.with(d.DB.WithContext(withDeadline(ctx, timeout)))
}

func (d DB) Transaction(f func(ORM) error, opts ...*sql.TxOptions) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		return f(d.with(tx))
	}, opts...)
}

func (d DB) with(tx *gorm.DB) ORM {
	d.DB = tx
	return &d
}

// withDeadline bounds ctx by timeout. The timer is released once the
// returned context is done, whichever of the deadline or the parent ends it.
func withDeadline(ctx context.Context, timeout time.Duration) context.Context {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	context.AfterFunc(timeoutCtx, cancel)
	return timeoutCtx
}

func (d DB) traceOperation(operation string) {
	ctx := d.DB.Statement.Context
	if ctx == nil {
		return
	}
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("span.kind", "client"),
			attribute.String("component", "database"),
			attribute.String("db.system", d.system),
			attribute.String("db.operation", operation),
		)
	}
}
