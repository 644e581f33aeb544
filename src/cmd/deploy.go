package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp-contracts/launchpad/src/launchpad"
)

func init() {
	deployCmd.Flags().BoolVar(&resume, "resume", false, "reuse contracts saved in the address file")
	RootCmd.AddCommand(deployCmd)
}

var resume bool

var deployCmd = &cobra.Command{
	Use:   "deploy-and-test",
	Short: "Deploys token, bonding curve and factory, then creates a token and trades it",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		if cmd.Flags().Changed("resume") {
			conf.Smoke.Resume = resume
		}

		env, err := newEnvironment(true)
		if err != nil {
			return
		}
		defer env.Close()

		result, err := launchpad.NewScenario(conf, env.deployer, env.store).Run(ctx, env.signer)
		if err != nil {
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Token implementation: %s\n", result.Token.Hex())
		fmt.Fprintf(cmd.OutOrStdout(), "Bonding curve:        %s\n", result.BondingCurve.Hex())
		fmt.Fprintf(cmd.OutOrStdout(), "Factory:              %s\n", result.Factory.Hex())
		fmt.Fprintf(cmd.OutOrStdout(), "Created token:        %s\n", result.CreatedToken.Hex())
		return
	},
}
