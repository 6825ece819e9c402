package session

import (
	"context"

	"creditagency/core"

	"github.com/fox-one/pkg/store/db"
)

type txKey struct{}

// New transactor backed by database
func New(database *db.DB) core.Transactor {
	return &transactor{db: database}
}

type transactor struct {
	db *db.DB
}

// Tx joins the transaction already carried by ctx, otherwise opens one
func (t *transactor) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*db.DB); ok {
		return fn(ctx)
	}

	return t.db.Tx(func(tx *db.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// DB the transaction carried by ctx or fallback
func DB(ctx context.Context, fallback *db.DB) *db.DB {
	if tx, ok := ctx.Value(txKey{}).(*db.DB); ok {
		return tx
	}

	return fallback
}

// InTx ctx carries a transaction
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*db.DB)
	return ok
}
