package cmd

import (
	"github.com/spf13/cobra"

	"github.com/m5dial/spiffs-uploader/internal/model"
)

var uploadCmd = &cobra.Command{
	Use:   "upload IMAGE",
	Short: "Write a SPIFFS image to the device at 0x00290000",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image := args[0]
		if err := checkPath(image, false); err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		_, events := a.svc.Upload(cmd.Context(), model.NewSession(a.port()), image)
		printEvents(cmd.OutOrStdout(), events, a.debug)
		if failed(events) {
			return errActionFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
