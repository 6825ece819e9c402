package config

import (
	"time"

	"creditagency/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// MarketsModeLocal markets run in process on the reference ledger
	MarketsModeLocal = "local"
	// MarketsModeRemote markets are reached through a market gateway
	MarketsModeRemote = "remote"
)

type (
	// Config credit agency config
	Config struct {
		DB      db.Config `json:"db"`
		Agency  Agency    `json:"agency"`
		Markets Markets   `json:"markets"`
		Auth    Auth      `json:"auth"`
		Workers Workers   `json:"workers"`
	}

	// Agency identity of the agency and its initial configuration
	Agency struct {
		Address          string `json:"address"`
		Governance       string `json:"governance"`
		MarketTemplateID uint64 `json:"market_template_id"`
		TokenTemplateID  uint64 `json:"token_template_id"`
		RewardToken      string `json:"reward_token"`
		CommonToken      string `json:"common_token"`
		LiquidationPrice string `json:"liquidation_price"`
		BorrowLimitRatio string `json:"borrow_limit_ratio"`
	}

	// Markets where markets live
	Markets struct {
		Mode      string        `json:"mode"`
		Endpoint  string        `json:"endpoint"`
		Timeout   time.Duration `json:"timeout"`
		CacheSize int           `json:"cache_size"`
		// bearer token for the remote gateway, signed with auth.secret when empty
		Token string `json:"token"`
		// static oracle rates of the local ledger
		Prices []Price `json:"prices"`
	}

	// Price amount_to = amount_from * rate
	Price struct {
		From string `json:"from"`
		To   string `json:"to"`
		Rate string `json:"rate"`
	}

	// Auth bearer token settings
	Auth struct {
		Secret string        `json:"secret"`
		Issuer string        `json:"issuer"`
		TTL    time.Duration `json:"ttl"`
	}

	// Workers worker settings
	Workers struct {
		LiquidityInterval time.Duration `json:"liquidity_interval"`
	}
)

func defaults(cfg *Config) {
	if cfg.Agency.Address == "" {
		cfg.Agency.Address = "credit-agency"
	}

	if cfg.Agency.BorrowLimitRatio == "" {
		cfg.Agency.BorrowLimitRatio = "1"
	}

	if cfg.Markets.Mode == "" {
		cfg.Markets.Mode = MarketsModeLocal
	}

	if cfg.Markets.Timeout <= 0 {
		cfg.Markets.Timeout = 10 * time.Second
	}

	if cfg.Markets.CacheSize <= 0 {
		cfg.Markets.CacheSize = 256
	}

	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "credit-agency"
	}

	if cfg.Auth.TTL <= 0 {
		cfg.Auth.TTL = 24 * time.Hour
	}

	if cfg.Workers.LiquidityInterval <= 0 {
		cfg.Workers.LiquidityInterval = time.Minute
	}
}

// Configuration initial agency configuration
func (a Agency) Configuration() (*core.Configuration, error) {
	cfg := &core.Configuration{
		Governance:       a.Governance,
		MarketTemplateID: a.MarketTemplateID,
		TokenTemplateID:  a.TokenTemplateID,
	}

	var err error
	if a.RewardToken != "" {
		if cfg.RewardToken, err = core.ParseToken(a.RewardToken); err != nil {
			return nil, errors.Wrap(err, "reward_token")
		}
	}

	if cfg.CommonToken, err = core.ParseToken(a.CommonToken); err != nil {
		return nil, errors.Wrap(err, "common_token")
	}

	if cfg.LiquidationPrice, err = decimal.NewFromString(a.LiquidationPrice); err != nil {
		return nil, errors.Wrap(err, "liquidation_price")
	}

	if cfg.BorrowLimitRatio, err = decimal.NewFromString(a.BorrowLimitRatio); err != nil {
		return nil, errors.Wrap(err, "borrow_limit_ratio")
	}

	return cfg, nil
}
