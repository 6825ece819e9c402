// Package liquidity scans accounts with memberships and reports the liquidatable ones.
package liquidity

import (
	"context"
	"errors"
	"sync"
	"time"

	"creditagency/core"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	checkpointKey = "liquidity_scan_checkpoint"
	limit         = 100
	concurrency   = 8
)

var errPassDone = errors.New("scan pass done")

// Checkpoints persists the scan cursor
type Checkpoints interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
}

type propertyCheckpoints struct {
	store property.Store
}

// PropertyCheckpoints checkpoints kept in a property store
func PropertyCheckpoints(store property.Store) Checkpoints {
	return &propertyCheckpoints{store: store}
}

func (p *propertyCheckpoints) Load(ctx context.Context, key string) (string, error) {
	v, err := p.store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

func (p *propertyCheckpoints) Save(ctx context.Context, key, value string) error {
	return p.store.Save(ctx, key, value)
}

// Scanner liquidity scanner worker
type Scanner struct {
	memberships core.MembershipStore
	agency      core.AgencyService
	checkpoints Checkpoints
	clock       clock.Clock
	interval    time.Duration

	// liquidatable accounts seen in the pass in progress
	found int

	liquidatable prometheus.Gauge
	scanned      prometheus.Counter
	failed       prometheus.Counter
	lastPass     prometheus.Gauge
}

// New new scanner, metrics are registered on registry
func New(
	memberships core.MembershipStore,
	agency core.AgencyService,
	checkpoints Checkpoints,
	registry prometheus.Registerer,
	interval time.Duration,
) *Scanner {
	s := &Scanner{
		memberships: memberships,
		agency:      agency,
		checkpoints: checkpoints,
		clock:       clock.New(),
		interval:    interval,
		liquidatable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agency",
			Name:      "liquidatable_accounts",
			Help:      "Accounts with debt above their credit line in the last full scan.",
		}),
		scanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agency",
			Name:      "liquidity_scanned_accounts_total",
			Help:      "Accounts evaluated by the liquidity scanner.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agency",
			Name:      "liquidity_failed_accounts_total",
			Help:      "Accounts the liquidity scanner could not evaluate and skipped.",
		}),
		lastPass: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agency",
			Name:      "liquidity_last_pass_timestamp_seconds",
			Help:      "Completion time of the last full scan.",
		}),
	}

	if s.interval <= 0 {
		s.interval = time.Minute
	}

	registry.MustRegister(s.liquidatable, s.scanned, s.failed, s.lastPass)
	return s
}

// Run run worker
func (w *Scanner) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "liquidity")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.clock.After(dur):
			switch err := w.run(ctx); {
			case err == nil:
				dur = 100 * time.Millisecond
			case errors.Is(err, errPassDone):
				dur = w.interval
			default:
				dur = time.Second
			}
		}
	}
}

func (w *Scanner) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	after, err := w.checkpoints.Load(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("checkpoints.Load")
		return err
	}

	accounts, err := w.memberships.Accounts(ctx, after, limit)
	if err != nil {
		log.WithError(err).Errorln("memberships.Accounts")
		return err
	}

	if len(accounts) == 0 {
		w.liquidatable.Set(float64(w.found))
		w.lastPass.Set(float64(w.clock.Now().Unix()))
		w.found = 0

		if err := w.checkpoints.Save(ctx, checkpointKey, ""); err != nil {
			log.WithError(err).Errorln("checkpoints.Save")
			return err
		}

		return errPassDone
	}

	found, err := w.scan(ctx, accounts)
	if err != nil {
		return err
	}
	w.found += found

	last := accounts[len(accounts)-1]
	if err := w.checkpoints.Save(ctx, checkpointKey, last); err != nil {
		log.WithError(err).Errorln("checkpoints.Save", last)
		return err
	}

	return nil
}

// scan evaluates accounts, an account that cannot be evaluated is skipped
func (w *Scanner) scan(ctx context.Context, accounts []string) (int, error) {
	var (
		mu    sync.Mutex
		found int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, account := range accounts {
		account := account
		g.Go(func() error {
			ok, err := w.evaluate(ctx, account)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				w.failed.Inc()
				return nil
			}

			if ok {
				mu.Lock()
				found++
				mu.Unlock()
			}

			return nil
		})
	}

	err := g.Wait()
	return found, err
}

func (w *Scanner) evaluate(ctx context.Context, account string) (bool, error) {
	log := logger.FromContext(ctx).WithField("account", account)

	view, err := w.agency.Liquidation(ctx, account)
	if err != nil {
		log.WithError(err).Errorln("agency.Liquidation, account skipped")
		return false, err
	}
	w.scanned.Inc()

	if !view.CanLiquidate {
		return false, nil
	}

	for _, debt := range view.Debt {
		log.WithField("market", debt.Market).Infoln("liquidatable debt", debt.Coin)
	}

	return true, nil
}
