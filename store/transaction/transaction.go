package transaction

import (
	"context"

	"creditagency/core"
	"creditagency/store/session"

	"github.com/fox-one/pkg/store/db"
	"github.com/pkg/errors"
)

type transactionStore struct {
	db *db.DB
}

// New new transaction store
func New(db *db.DB) core.TransactionStore {
	return &transactionStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Transaction{})
		if err := tx.AutoMigrate(core.Transaction{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *transactionStore) Create(ctx context.Context, transaction *core.Transaction) error {
	err := session.DB(ctx, s.db).Update().
		Where("trace_id = ?", transaction.TraceID).
		FirstOrCreate(transaction).Error
	if err != nil {
		return errors.Wrap(err, "transactions.Create")
	}

	return nil
}

func (s *transactionStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Transaction, error) {
	var transactions []*core.Transaction
	err := session.DB(ctx, s.db).View().
		Where("id > ?", fromID).
		Order("id").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(err, "transactions.List")
	}

	return transactions, nil
}

func (s *transactionStore) ListByAccount(ctx context.Context, account string, fromID int64, limit int) ([]*core.Transaction, error) {
	var transactions []*core.Transaction
	err := session.DB(ctx, s.db).View().
		Where("account = ? AND id > ?", account, fromID).
		Order("id").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(err, "transactions.ListByAccount")
	}

	return transactions, nil
}
