package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"creditagency/handler"
	"creditagency/handler/gateway"
	"creditagency/handler/metrics"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run agency api server",
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

		agency := provideAgency(database, m)

		initial, err := cfg.Agency.Configuration()
		if err != nil {
			return err
		}

		if err := agency.Init(ctx, initial); err != nil {
			return err
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		var hub gateway.Hub
		if m.hub != nil {
			hub = m.hub
		}

		server := handler.New(
			agency,
			provideTransactionStore(database),
			provideAuthenticator(),
			metrics.New(registry),
			hub,
			rootCmd.Version,
		)

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		svr := &http.Server{
			Addr:    addr,
			Handler: server.Handler(),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logrus.Infoln("serve at", addr)
			if err := svr.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}

			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := svr.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			return nil
		})

		if withWorkers, _ := cmd.Flags().GetBool("workers"); withWorkers {
			runWorkers(ctx, g, provideWorkers(database, m, agency, registry))
		}

		if err := g.Wait(); err != nil && err != context.Canceled {
			return err
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
	serverCmd.Flags().Bool("workers", true, "run workers in the server process")
}
