package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m5dial/spiffs-uploader/internal/serialport"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serialport.ListDetailed()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: port enumeration failed: %v\n", err)
		}
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No serial ports found.")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p.Label())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
