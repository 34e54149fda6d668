package cmd

import (
	"github.com/spf13/cobra"

	"github.com/m5dial/spiffs-uploader/internal/model"
)

var forceBuild bool

var buildCmd = &cobra.Command{
	Use:   "build DIR OUT",
	Short: "Pack DIR into a SPIFFS image at OUT",
	Long: `Pack DIR into a SPIFFS image at OUT (4096-byte blocks, 256-byte pages,
0x160000 bytes). ".bin" is appended to OUT when it has no extension.

A successful probe of the device is required first, as in the UI; pass
--force to build without a device attached.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, out := args[0], args[1]
		if err := checkPath(dir, true); err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		st := model.NewSession("")
		if !forceBuild {
			st = st.WithPort(a.port())
		}
		events := buildImage(cmd.Context(), a.svc, st, dir, out, forceBuild)
		printEvents(cmd.OutOrStdout(), events, a.debug)
		if failed(events) {
			return errActionFailed
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVarP(&forceBuild, "force", "f", false, "build without probing the device first")
	rootCmd.AddCommand(buildCmd)
}
