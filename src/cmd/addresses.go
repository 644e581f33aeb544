package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp-contracts/launchpad/src/utils/addresses"
	"github.com/warp-contracts/launchpad/src/utils/eth"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

func init() {
	addressesCmd.Flags().Bool("verify", false, "mark saved addresses that have no code on chain")
	RootCmd.AddCommand(addressesCmd)
}

var addressesCmd = &cobra.Command{
	Use:   "addresses",
	Short: "Lists contract addresses saved for the current network",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		verify, _ := cmd.Flags().GetBool("verify")

		store := addresses.NewStore(conf)
		entries, err := store.Read()
		if err != nil {
			return
		}

		noCode := make(map[string]bool)
		if verify {
			client, err := eth.GetEthClient(ctx, logger.NewSublogger("addresses-cmd"), conf)
			if err != nil {
				return err
			}
			defer client.Close()

			missing, err := store.Verify(ctx, client, conf.Addresses.VerifyWorkers)
			if err != nil {
				return err
			}
			for _, name := range missing {
				noCode[name] = true
			}
		}

		for _, name := range addresses.SortedKeys(entries) {
			if noCode[name] {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tno code\n", name, entries[name])
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, entries[name])
		}
		return
	},
}
