package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp-contracts/launchpad/src/contract"
	"github.com/warp-contracts/launchpad/src/distribute"
)

func init() {
	distributeCmd.Flags().String("token", "", "token address or its name in the address file")
	distributeCmd.Flags().String("file", "", "CSV with account and amount columns")
	_ = distributeCmd.MarkFlagRequired("token")
	_ = distributeCmd.MarkFlagRequired("file")
	RootCmd.AddCommand(distributeCmd)
}

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Transfers tokens to the accounts listed in a CSV file",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		tokenFlag, _ := cmd.Flags().GetString("token")
		file, _ := cmd.Flags().GetString("file")

		env, err := newEnvironment(true)
		if err != nil {
			return
		}
		defer env.Close()

		address, err := env.resolveAddress(tokenFlag)
		if err != nil {
			return
		}

		token, err := env.deployer.Attach(contract.Token, address)
		if err != nil {
			return
		}

		sent, err := distribute.NewDistributor(conf, env.submitter).
			WithMonitor(monitor).
			Run(ctx, env.signer, token, file)
		if err != nil {
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Transfers sent: %d\n", sent)
		return
	},
}
