package cmd

import (
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// migrate creates the agency tables, and with --init stores the configured
// governance, common token and ratios if the agency has none yet
var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "migrate agency tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)

		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			log.WithError(err).Errorln("db.Migrate")
			return err
		}

		if seed, _ := cmd.Flags().GetBool("init"); !seed {
			return nil
		}

		initial, err := cfg.Agency.Configuration()
		if err != nil {
			return err
		}

		m, err := provideMarkets()
		if err != nil {
			return err
		}

		if err := provideAgency(database, m).Init(ctx, initial); err != nil {
			log.WithError(err).Errorln("agency.Init")
			return err
		}

		cmd.Println("agency configuration:", initial.Governance, initial.CommonToken.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("init", false, "store the initial agency configuration")
}
