package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp-contracts/launchpad/src/contract"
)

func init() {
	callCmd.Flags().String("name", "", "contract name, unknown names are looked up on the block explorer")
	callCmd.Flags().String("address", "", "contract address or its name in the address file")
	callCmd.Flags().String("method", "", "view method to call")
	_ = callCmd.MarkFlagRequired("name")
	_ = callCmd.MarkFlagRequired("method")
	RootCmd.AddCommand(callCmd)
}

var callCmd = &cobra.Command{
	Use:   "call [args...]",
	Short: "Calls a read-only contract method and prints the result",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		name, _ := cmd.Flags().GetString("name")
		addressFlag, _ := cmd.Flags().GetString("address")
		methodName, _ := cmd.Flags().GetString("method")
		if addressFlag == "" {
			addressFlag = name
		}

		env, err := newEnvironment(false)
		if err != nil {
			return
		}
		defer env.Close()

		address, err := env.resolveAddress(addressFlag)
		if err != nil {
			return
		}

		handle, err := env.deployer.AttachVerified(ctx, name, address)
		if err != nil {
			return
		}

		method, ok := handle.ABI.Methods[methodName]
		if !ok {
			return fmt.Errorf("%s has no method %s", name, methodName)
		}

		callArgs, err := contract.ParseArgs(&method, args)
		if err != nil {
			return
		}

		out, err := handle.Call(ctx, methodName, callArgs...)
		if err != nil {
			return
		}

		for i, value := range out {
			label := method.Outputs[i].Name
			if label == "" {
				label = fmt.Sprint(i)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", label, value)
		}
		return
	},
}
