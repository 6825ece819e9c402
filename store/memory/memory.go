// Package memory keeps every agency table in process memory.
//
// Tx snapshots all tables and restores them when fn fails.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"creditagency/core"
)

type txKey struct{}

// Store in memory tables
type Store struct {
	mu sync.RWMutex

	cfg            *core.Configuration
	markets        map[core.Token]*core.Market
	instantiations map[uint64]*core.Instantiation
	nextID         uint64
	memberships    map[string]map[string]time.Time
	transactions   []*core.Transaction
}

// New empty store
func New() *Store {
	return &Store{
		markets:        map[core.Token]*core.Market{},
		instantiations: map[uint64]*core.Instantiation{},
		memberships:    map[string]map[string]time.Time{},
	}
}

type snapshot struct {
	cfg            *core.Configuration
	markets        map[core.Token]*core.Market
	instantiations map[uint64]*core.Instantiation
	nextID         uint64
	memberships    map[string]map[string]time.Time
	transactions   int
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &snapshot{
		markets:        make(map[core.Token]*core.Market, len(s.markets)),
		instantiations: make(map[uint64]*core.Instantiation, len(s.instantiations)),
		nextID:         s.nextID,
		memberships:    make(map[string]map[string]time.Time, len(s.memberships)),
		transactions:   len(s.transactions),
	}

	if s.cfg != nil {
		cfg := *s.cfg
		snap.cfg = &cfg
	}

	for k, m := range s.markets {
		market := *m
		snap.markets[k] = &market
	}

	for k, inst := range s.instantiations {
		i := *inst
		snap.instantiations[k] = &i
	}

	for account, set := range s.memberships {
		markets := make(map[string]time.Time, len(set))
		for m, t := range set {
			markets[m] = t
		}
		snap.memberships[account] = markets
	}

	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = snap.cfg
	s.markets = snap.markets
	s.instantiations = snap.instantiations
	s.nextID = snap.nextID
	s.memberships = snap.memberships
	s.transactions = s.transactions[:snap.transactions]
}

// Tx run fn, restore every table when it fails
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

// Configurations configuration store view
func (s *Store) Configurations() core.ConfigurationStore { return (*configurationStore)(s) }

// Markets market store view
func (s *Store) Markets() core.MarketStore { return (*marketStore)(s) }

// Instantiations instantiation store view
func (s *Store) Instantiations() core.InstantiationStore { return (*instantiationStore)(s) }

// Memberships membership store view
func (s *Store) Memberships() core.MembershipStore { return (*membershipStore)(s) }

// Transactions transaction store view
func (s *Store) Transactions() core.TransactionStore { return (*transactionStore)(s) }

type configurationStore Store

func (s *configurationStore) Find(_ context.Context) (*core.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cfg == nil {
		return nil, core.ErrInvalidConfig
	}

	cfg := *s.cfg
	return &cfg, nil
}

func (s *configurationStore) Save(_ context.Context, cfg *core.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *cfg
	c.UpdatedAt = time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = c.UpdatedAt
	}
	s.cfg = &c
	return nil
}

type marketStore Store

func (s *marketStore) Create(_ context.Context, market *core.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	market.CreatedAt, market.UpdatedAt = now, now
	m := *market
	s.markets[market.Token] = &m
	return nil
}

func (s *marketStore) Update(_ context.Context, market *core.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.markets[market.Token]
	if !ok {
		return nil
	}

	m.State = market.State
	m.Address = market.Address
	m.UpdatedAt = time.Now()
	return nil
}

func (s *marketStore) Delete(_ context.Context, token core.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.markets, token)
	return nil
}

func (s *marketStore) Find(_ context.Context, token core.Token) (*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.markets[token]
	if !ok {
		return nil, nil
	}

	market := *m
	return &market, nil
}

func (s *marketStore) FindByAddress(_ context.Context, address string) (*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.markets {
		if m.IsReady() && m.Address == address {
			market := *m
			return &market, nil
		}
	}

	return nil, nil
}

func (s *marketStore) sorted() []*core.Market {
	markets := make([]*core.Market, 0, len(s.markets))
	for _, m := range s.markets {
		market := *m
		markets = append(markets, &market)
	}

	sort.Slice(markets, func(i, j int) bool {
		return markets[i].Token.Less(markets[j].Token)
	})

	return markets
}

func (s *marketStore) List(_ context.Context, after *core.Token, limit int) ([]*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var markets []*core.Market
	for _, m := range s.sorted() {
		if len(markets) >= limit {
			break
		}

		if !m.IsReady() {
			continue
		}

		if after != nil && !after.Less(m.Token) {
			continue
		}

		markets = append(markets, m)
	}

	return markets, nil
}

func (s *marketStore) All(_ context.Context) ([]*core.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(), nil
}

type instantiationStore Store

func (s *instantiationStore) Create(_ context.Context, inst *core.Instantiation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	inst.ID = s.nextID
	inst.CreatedAt = time.Now()
	i := *inst
	s.instantiations[inst.ID] = &i
	return nil
}

func (s *instantiationStore) Take(_ context.Context, id uint64) (*core.Instantiation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instantiations[id]
	if !ok {
		return nil, nil
	}

	delete(s.instantiations, id)
	return inst, nil
}

type membershipStore Store

func (s *membershipStore) Add(_ context.Context, account, market string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.memberships[account]
	if !ok {
		set = map[string]time.Time{}
		s.memberships[account] = set
	}

	if _, ok := set[market]; !ok {
		set[market] = time.Now()
	}

	return nil
}

func (s *membershipStore) Remove(_ context.Context, account, market string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.memberships[account]; ok {
		delete(set, market)
	}

	return nil
}

func (s *membershipStore) Markets(_ context.Context, account string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	markets := make([]string, 0, len(s.memberships[account]))
	for m := range s.memberships[account] {
		markets = append(markets, m)
	}

	sort.Strings(markets)
	return markets, nil
}

func (s *membershipStore) Has(_ context.Context, account, market string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.memberships[account][market]
	return ok, nil
}

func (s *membershipStore) Accounts(_ context.Context, after string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]string, 0, len(s.memberships))
	for account, set := range s.memberships {
		if len(set) > 0 && account > after {
			accounts = append(accounts, account)
		}
	}

	sort.Strings(accounts)
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}

	return accounts, nil
}

type transactionStore Store

func (s *transactionStore) Create(_ context.Context, transaction *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.transactions {
		if t.TraceID == transaction.TraceID {
			*transaction = *t
			return nil
		}
	}

	transaction.ID = int64(len(s.transactions) + 1)
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}

	t := *transaction
	s.transactions = append(s.transactions, &t)
	return nil
}

func (s *transactionStore) List(ctx context.Context, fromID int64, limit int) ([]*core.Transaction, error) {
	return s.ListByAccount(ctx, "", fromID, limit)
}

func (s *transactionStore) ListByAccount(_ context.Context, account string, fromID int64, limit int) ([]*core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var transactions []*core.Transaction
	for _, t := range s.transactions {
		if len(transactions) >= limit {
			break
		}

		if t.ID <= fromID || (account != "" && t.Account != account) {
			continue
		}

		tx := *t
		transactions = append(transactions, &tx)
	}

	return transactions, nil
}
