package cmd

import (
	"fmt"
	"strconv"

	"github.com/lehigh-university-libraries/xcataloger/internal/matcher"
	"github.com/lehigh-university-libraries/xcataloger/internal/report"
	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
	"github.com/spf13/cobra"
)

func newSetCmd() *cobra.Command {
	var srcDir string
	var assetsDir string
	var configPath string
	var noRename bool
	var format string
	var keep bool
	var dryRun bool
	var reportPath string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Fill an asset catalog with matching images from a directory",
		Long: `Matches every image slot of the catalog's Contents.json against the config, finds
the first PNG in --src-dir with the matched slot's size, copies it into the
catalog and records its file name. Contents.json is rewritten with the known
image keys only.

All slots are matched before any file is touched. A catalog slot that matches
no config slot aborts the run and leaves the catalog as it was, including the
files it references. Once matching succeeds, and unless --keep is given, the
files the catalog referenced are deleted before the new images are copied in.
Referenced names that point outside the catalog directory are never deleted.

File names come from the config slot name, the source file (--no-rename), or a
--format template with <key> placeholders: <name>, <width>, <height>, <idiom>,
<size>, <scale>, <orientation>, <subtype>, <minimum-system-version>, <extent>.`,
		Example: `  # Fill a launch image set
  xcataloger set -s build/LaunchImages -i App/Images.xcassets/LaunchImage.launchimage -c launch-images.json

  # Keep source file names and existing files, preview only
  xcataloger set -s shots -i AppIcon.appiconset -c app-icons.json -n -k --dry-run

  # Templated names with a YAML report
  xcataloger set -s icons -i AppIcon.appiconset -c app-icons.json -f "Icon-<size>@<scale>" --report set.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := slots.Load(configPath)
			if err != nil {
				return err
			}

			opts := matcher.Options{
				KeepExisting: keep,
				NoRename:     noRename,
				Format:       format,
				DryRun:       dryRun,
			}
			_, plan, err := matcher.Run(srcDir, assetsDir, cfg, opts)
			if err != nil {
				return err
			}

			if dryRun {
				printPlan(cmd, plan)
			}

			if reportPath != "" {
				if err := report.Write(reportPath, report.FromPlan(srcDir, assetsDir, plan, dryRun)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&srcDir, "src-dir", "s", "", "Directory of candidate PNG images (required)")
	cmd.Flags().StringVarP(&assetsDir, "image-assets", "i", "", "Asset set directory containing Contents.json (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Slot config file (required)")
	cmd.Flags().BoolVarP(&noRename, "no-rename", "n", false, "Keep the source file names")
	cmd.Flags().StringVarP(&format, "format", "f", "", "File name template with <key> placeholders")
	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "Keep files already referenced by the catalog")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the assignments without changing the catalog")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the assignments to a .yaml, .json or .parquet report")

	cmd.MarkFlagsMutuallyExclusive("no-rename", "format")
	_ = cmd.MarkFlagRequired("src-dir")
	_ = cmd.MarkFlagRequired("image-assets")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func printPlan(cmd *cobra.Command, plan *matcher.Plan) {
	headers := []string{"#", "Slot", "Config", "Size", "Source", "File"}
	rows := make([][]string, 0, len(plan.Assignments)+len(plan.Unfilled))
	for _, a := range plan.Assignments {
		rows = append(rows, []string{
			strconv.Itoa(a.Index),
			a.Image.Attributes().String(),
			a.Config.Name,
			fmt.Sprintf("%dx%d", a.Width, a.Height),
			a.Source,
			a.Filename,
		})
	}
	for _, u := range plan.Unfilled {
		rows = append(rows, []string{
			strconv.Itoa(u.Index),
			u.Image.Attributes().String(),
			u.Config.Name,
			fmt.Sprintf("%dx%d", u.Width, u.Height),
			"-",
			"-",
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), headers, rows, []columnAlignment{alignRight}))
}
