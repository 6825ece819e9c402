package instantiation

import (
	"context"

	"creditagency/core"
	"creditagency/store/session"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/pkg/errors"
)

type instantiationStore struct {
	db *db.DB
}

// New new pending instantiation store
func New(db *db.DB) core.InstantiationStore {
	return &instantiationStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Instantiation{})
		if err := tx.AutoMigrate(core.Instantiation{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *instantiationStore) Create(ctx context.Context, inst *core.Instantiation) error {
	inst.TokenKind = inst.Token.Kind
	inst.Denom = inst.Token.Denom
	if err := session.DB(ctx, s.db).Update().Create(inst).Error; err != nil {
		return errors.Wrap(err, "instantiations.Create")
	}

	return nil
}

func (s *instantiationStore) Take(ctx context.Context, id uint64) (*core.Instantiation, error) {
	tx := session.DB(ctx, s.db)

	var inst core.Instantiation
	err := tx.View().Where("id = ?", id).First(&inst).Error
	if store.IsErrNotFound(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "instantiations.Take")
	}

	update := tx.Update().Where("id = ?", id).Delete(core.Instantiation{})
	if update.Error != nil {
		return nil, errors.Wrap(update.Error, "instantiations.Take")
	}

	if update.RowsAffected == 0 {
		return nil, db.ErrOptimisticLock
	}

	inst.Token = core.Token{Kind: inst.TokenKind, Denom: inst.Denom}
	return &inst, nil
}
