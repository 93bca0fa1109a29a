package cmd

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/xcataloger/internal/generator"
	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
	"github.com/spf13/cobra"
)

func newMakeCmd() *cobra.Command {
	var configPath string
	var output string
	var name string
	var background string
	var logo string
	var logoColor string
	var fontPath string

	cmd := &cobra.Command{
		Use:   "make",
		Short: "Generate placeholder images for every slot of a config",
		Long: `Generates one PNG per slot of the config, sized to the slot and filled with the
background colour. With --logo the text is drawn centred, shrunk until it covers at
most 30% of the longer side.

Images are written to a new directory under --output; if the directory already
exists a numeric suffix is added: LaunchImages(1), LaunchImages(2), ...`,
		Example: `  # Transparent placeholders in ./LaunchImages
  xcataloger make -c launch-images.json

  # White placeholders with a black logo
  xcataloger make -c app-icons.json -o build -C "#ffffff" -l "MyApp" --logo-color black`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := slots.Load(configPath)
			if err != nil {
				return err
			}

			bg, err := generator.ParseColor(background)
			if err != nil {
				return fmt.Errorf("--color: %w", err)
			}
			fg, err := generator.ParseColor(logoColor)
			if err != nil {
				return fmt.Errorf("--logo-color: %w", err)
			}
			if fontPath == "" {
				fontPath = os.Getenv(envFont)
			}

			gen, err := generator.New(generator.Options{
				OutputDir:  output,
				DirName:    name,
				Background: bg,
				Logo:       logo,
				LogoColor:  fg,
				FontPath:   fontPath,
			})
			if err != nil {
				return err
			}

			dir, err := gen.Generate(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Slot config file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "Parent directory for the generated image directory")
	cmd.Flags().StringVar(&name, "name", generator.DefaultDirName, "Name of the generated image directory")
	cmd.Flags().StringVarP(&background, "color", "C", "transparent", "Background colour (#RGB, #RRGGBB, #RRGGBBAA, a colour name or transparent)")
	cmd.Flags().StringVarP(&logo, "logo", "l", "", "Logo text drawn in the centre of each image")
	cmd.Flags().StringVar(&logoColor, "logo-color", "white", "Logo colour")
	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType/OpenType font for the logo (default $"+envFont+" or Go Regular)")

	_ = cmd.MarkFlagRequired("config")
	return cmd
}
