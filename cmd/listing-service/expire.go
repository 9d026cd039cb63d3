package main

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"
)

// expireCommand sweeps listings past their expiry. It is meant to be run
// periodically by an external scheduler.
func expireCommand(rt *runtime) *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Expires active listings whose expiry has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, cleanup, err := wireListingUsecase(rt.bc.GetData(), rt.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			now := time.Now().UTC()
			total := 0
			for {
				n, err := listings.ExpireDueListings(ctx, now, batch)
				total += n
				if err != nil {
					return err
				}
				// a short batch means only skipped listings are left, if any
				if n < batch {
					break
				}
			}

			log.NewHelper(rt.logger).Infof("expiry sweep done: %d listings expired", total)
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 100, "listings loaded per round")

	return cmd
}
