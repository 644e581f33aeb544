package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"
	"github.com/warp-contracts/launchpad/src/contract"
	"github.com/warp-contracts/launchpad/src/reward"
)

func init() {
	rewardCmd.Flags().String("distributor", contract.RewardDistributor, "distributor address or its name in the address file")
	rewardCmd.Flags().String("rate", "", "tokens per interval, in the smallest unit")
	rewardCmd.Flags().String("label", "", "shown in logs")
	_ = rewardCmd.MarkFlagRequired("rate")
	RootCmd.AddCommand(rewardCmd)
}

var rewardCmd = &cobra.Command{
	Use:   "set-tokens-per-interval",
	Short: "Changes the reward rate of a distributor",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		distributorFlag, _ := cmd.Flags().GetString("distributor")
		rateFlag, _ := cmd.Flags().GetString("rate")
		label, _ := cmd.Flags().GetString("label")

		rate, ok := new(big.Int).SetString(rateFlag, 10)
		if !ok || rate.Sign() < 0 {
			return fmt.Errorf("invalid rate: %s", rateFlag)
		}

		env, err := newEnvironment(true)
		if err != nil {
			return
		}
		defer env.Close()

		address, err := env.resolveAddress(distributorFlag)
		if err != nil {
			return
		}

		distributor, err := env.deployer.Attach(contract.RewardDistributor, address)
		if err != nil {
			return
		}

		return reward.NewUpdater(conf, env.submitter).
			UpdateTokensPerInterval(ctx, env.signer, distributor, rate, label)
	},
}
