package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m5dial/spiffs-uploader/internal/esptool"
	"github.com/m5dial/spiffs-uploader/internal/model"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Detect the flash size of the connected device",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		st, events := a.svc.Probe(cmd.Context(), model.NewSession(a.port()))
		printEvents(cmd.OutOrStdout(), events, a.debug)
		if !st.Connected {
			return errActionFailed
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Flash size: %s (%d bytes)\n", esptool.FormatSize(st.FlashSize), st.FlashSize)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
