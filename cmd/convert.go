package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/xcataloger/internal/converter"
	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var source string
	var configPath string
	var orientation string
	var rotate string
	var output string
	var ignoreAspect bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert one source image into every slot size of a config",
		Long: `Scales the source image to each slot of the config and writes {width}x{height}.png
into a new ConvertedImages directory under --output.

With --rotate, slots whose orientation differs from the source orientation get a
copy of the source turned 90 degrees in that direction first. The source
orientation comes from --orientation, or from the source's own proportions.

The image is shrunk so its longer side fits the slot's longer side, then centre
cropped to the slot size, or stretched to it with --ignore-aspect-ratio.`,
		Example: `  # Launch images from one portrait artwork
  xcataloger convert -s splash.png -c launch-images.json -O portrait -r left

  # App icons, stretched
  xcataloger convert -s icon.png -c app-icons.json -i -o build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srcOrientation, err := converter.ParseOrientation(orientation)
			if err != nil {
				return err
			}
			direction, err := converter.ParseDirection(rotate)
			if err != nil {
				return err
			}

			cfg, err := slots.Load(configPath)
			if err != nil {
				return err
			}

			conv := converter.New(converter.Options{
				OutputDir:         output,
				SourceOrientation: srcOrientation,
				Rotate:            direction,
				IgnoreAspectRatio: ignoreAspect,
			})
			dir, err := conv.ConvertFile(source, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Source image (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Slot config file (required)")
	cmd.Flags().StringVarP(&orientation, "orientation", "O", "", "Source orientation: portrait or landscape")
	cmd.Flags().StringVarP(&rotate, "rotate", "r", "", "Rotate direction for slots of the other orientation: left or right")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "Parent directory for the converted image directory")
	cmd.Flags().BoolVarP(&ignoreAspect, "ignore-aspect-ratio", "i", false, "Stretch to the slot size instead of cropping")

	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
