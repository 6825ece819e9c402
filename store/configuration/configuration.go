package configuration

import (
	"context"

	"creditagency/core"
	"creditagency/store/session"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/pkg/errors"
)

const singletonID = 1

type configurationStore struct {
	db *db.DB
}

// New new configuration store
func New(db *db.DB) core.ConfigurationStore {
	return &configurationStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Configuration{})
		if err := tx.AutoMigrate(core.Configuration{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *configurationStore) Find(ctx context.Context) (*core.Configuration, error) {
	var cfg core.Configuration
	err := session.DB(ctx, s.db).View().Where("id = ?", singletonID).First(&cfg).Error
	if store.IsErrNotFound(err) {
		return nil, core.ErrInvalidConfig
	} else if err != nil {
		return nil, errors.Wrap(err, "configurations.Find")
	}

	if cfg.RewardToken, err = core.ParseToken(cfg.RewardTokenKey); err != nil {
		return nil, errors.Wrap(err, "configurations.Find reward token")
	}

	if cfg.CommonToken, err = core.ParseToken(cfg.CommonTokenKey); err != nil {
		return nil, errors.Wrap(err, "configurations.Find common token")
	}

	return &cfg, nil
}

func (s *configurationStore) Save(ctx context.Context, cfg *core.Configuration) error {
	cfg.ID = singletonID
	cfg.RewardTokenKey = cfg.RewardToken.String()
	cfg.CommonTokenKey = cfg.CommonToken.String()
	if err := session.DB(ctx, s.db).Update().Save(cfg).Error; err != nil {
		return errors.Wrap(err, "configurations.Save")
	}

	return nil
}
