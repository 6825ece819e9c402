package cmd

import (
	"context"

	"creditagency/core"
	"creditagency/worker/instantiation"
	"creditagency/worker/liquidity"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Worker worker
type Worker interface {
	Run(ctx context.Context) error
}

func provideWorkers(database *db.DB, m *markets, agency core.AgencyService, registry prometheus.Registerer) []Worker {
	return []Worker{
		instantiation.New(m.feed, agency),
		liquidity.New(
			provideMembershipStore(database),
			agency,
			liquidity.PropertyCheckpoints(providePropertyStore(database)),
			registry,
			cfg.Workers.LiquidityInterval,
		),
	}
}

func runWorkers(ctx context.Context, g *errgroup.Group, workers []Worker) {
	for _, w := range workers {
		w := w
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "run agency workers against remote markets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := signal.WithContext(cmd.Context())
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		m, err := provideMarkets()
		if err != nil {
			return err
		}

		if m.hub != nil {
			log.Warnln("local markets live in the server process, run the server command instead")
		}

		agency := provideAgency(database, m)

		g, ctx := errgroup.WithContext(ctx)
		runWorkers(ctx, g, provideWorkers(database, m, agency, prometheus.NewRegistry()))

		if err := g.Wait(); err != nil && err != context.Canceled {
			return err
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
