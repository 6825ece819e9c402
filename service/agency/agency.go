package agency

import (
	"context"
	"sync"
	"time"

	"creditagency/core"
	"creditagency/pkg/id"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Config agency identity
type Config struct {
	// Address the agency acts as when it sends market commands
	Address string `json:"address"`
}

type service struct {
	cfg Config

	// serializes every mutating entry point
	mu sync.Mutex

	transactor     core.Transactor
	configs        core.ConfigurationStore
	markets        core.MarketStore
	instantiations core.InstantiationStore
	memberships    core.MembershipStore
	transactions   core.TransactionStore
	marketz        core.MarketClient
	executor       core.MarketExecutor
}

// New new agency service
func New(
	cfg Config,
	transactor core.Transactor,
	configs core.ConfigurationStore,
	markets core.MarketStore,
	instantiations core.InstantiationStore,
	memberships core.MembershipStore,
	transactions core.TransactionStore,
	marketz core.MarketClient,
	executor core.MarketExecutor,
) core.AgencyService {
	return &service{
		cfg:            cfg,
		transactor:     transactor,
		configs:        configs,
		markets:        markets,
		instantiations: instantiations,
		memberships:    memberships,
		transactions:   transactions,
		marketz:        marketz,
		executor:       executor,
	}
}

// batch collects what one entry point sends to markets and logs
type batch struct {
	msgs []*core.MarketMsg
	logs []*core.Transaction
	// account memberships written in this batch, keyed by market and account
	entered map[core.MarketEntry]bool
}

func (b *batch) member(market, account string) {
	if b.entered == nil {
		b.entered = map[core.MarketEntry]bool{}
	}

	b.entered[core.MarketEntry{Market: market, Account: account}] = true
}

func (b *batch) send(msgs ...*core.MarketMsg) {
	b.msgs = append(b.msgs, msgs...)
}

func (b *batch) log(action core.ActionType, sender, account string) *core.Transaction {
	t := &core.Transaction{
		Action:    action,
		TraceID:   id.GenTraceID(),
		Sender:    sender,
		Account:   account,
		Amount:    decimal.Zero,
		CreatedAt: time.Now(),
	}

	b.logs = append(b.logs, t)
	return t
}

// apply runs fn, stores its memberships and logs, and dispatches the collected market
// commands last. Nothing fallible runs on the agency side after markets accepted the batch.
func (s *service) apply(ctx context.Context, fn func(ctx context.Context, b *batch) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transactor.Tx(ctx, func(ctx context.Context) error {
		log := logger.FromContext(ctx)

		b := &batch{}
		if err := fn(ctx, b); err != nil {
			return err
		}

		for _, t := range b.logs {
			if err := s.transactions.Create(ctx, t); err != nil {
				log.WithError(err).Errorln("transactions.Create")
				return err
			}
		}

		if len(b.msgs) == 0 {
			return nil
		}

		entries, err := s.executor.Execute(ctx, b.msgs)
		if err != nil {
			log.WithError(err).Infoln("market commands rejected")
			return err
		}

		for _, entry := range entries {
			if !b.entered[*entry] {
				log.WithField("market", entry.Market).
					WithField("account", entry.Account).
					Warnln("market reported an entry the agency did not record")
			}
		}

		return nil
	})
}
