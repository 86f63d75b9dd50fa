package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/pkg/events"
)

var partitions int

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Create the Kafka topics the service publishes to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is not set")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		if err := events.EnsureTopics(ctx, cfg.KafkaBrokers[0], partitions, events.Topics...); err != nil {
			return err
		}
		for _, tp := range events.Topics {
			fmt.Fprintln(cmd.OutOrStdout(), tp)
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().IntVar(&partitions, "partitions", 3, "Partitions per topic")
	rootCmd.AddCommand(topicsCmd)
}
