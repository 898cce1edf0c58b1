package cli

import (
	"fmt"

	"slide-quiz/internal/config"

	"github.com/spf13/cobra"
)

// NewTopicsCmd lists the topics the configured source can serve.
func NewTopicsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List available quiz topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			if b.source == nil {
				return fmt.Errorf("configured source cannot list topics")
			}
			topics, err := b.source.Topics(cmd.Context())
			if err != nil {
				return err
			}
			for _, topic := range topics {
				fmt.Fprintln(cmd.OutOrStdout(), topic)
			}
			return nil
		},
	}
}
