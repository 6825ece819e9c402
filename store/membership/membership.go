package membership

import (
	"context"

	"creditagency/core"
	"creditagency/store/session"

	"github.com/fox-one/pkg/store/db"
	"github.com/pkg/errors"
)

type membershipStore struct {
	db *db.DB
}

// New new membership store
func New(db *db.DB) core.MembershipStore {
	return &membershipStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Membership{})
		if err := tx.AutoMigrate(core.Membership{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *membershipStore) Add(ctx context.Context, account, market string) error {
	m := core.Membership{Account: account, Market: market}
	err := session.DB(ctx, s.db).Update().
		Where("account = ? AND market = ?", account, market).
		FirstOrCreate(&m).Error
	if err != nil {
		return errors.Wrap(err, "memberships.Add")
	}

	return nil
}

func (s *membershipStore) Remove(ctx context.Context, account, market string) error {
	err := session.DB(ctx, s.db).Update().
		Where("account = ? AND market = ?", account, market).
		Delete(core.Membership{}).Error
	if err != nil {
		return errors.Wrap(err, "memberships.Remove")
	}

	return nil
}

func (s *membershipStore) Markets(ctx context.Context, account string) ([]string, error) {
	var markets []string
	err := session.DB(ctx, s.db).View().Model(core.Membership{}).
		Where("account = ?", account).
		Order("market").
		Pluck("market", &markets).Error
	if err != nil {
		return nil, errors.Wrap(err, "memberships.Markets")
	}

	return markets, nil
}

func (s *membershipStore) Has(ctx context.Context, account, market string) (bool, error) {
	var count int
	err := session.DB(ctx, s.db).View().Model(core.Membership{}).
		Where("account = ? AND market = ?", account, market).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "memberships.Has")
	}

	return count > 0, nil
}

func (s *membershipStore) Accounts(ctx context.Context, after string, limit int) ([]string, error) {
	var accounts []string
	// Pluck replaces any select, group instead of distinct
	err := session.DB(ctx, s.db).View().Model(core.Membership{}).
		Where("account > ?", after).
		Group("account").
		Order("account").
		Limit(limit).
		Pluck("account", &accounts).Error
	if err != nil {
		return nil, errors.Wrap(err, "memberships.Accounts")
	}

	return accounts, nil
}
