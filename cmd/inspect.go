package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lehigh-university-libraries/xcataloger/internal/catalog"
	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var configPath string
	var assetsDir string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show a slot config and how a catalog's slots resolve against it",
		Long: `Prints every slot of the config with its resolved pixel size. With --image-assets,
also prints every image slot of the catalog's Contents.json, the config slot it
matches and whether its current file exists.`,
		Example: `  xcataloger inspect -c app-icons.json
  xcataloger inspect -c app-icons.json -i App/Images.xcassets/AppIcon.appiconset`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := slots.Load(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, renderTable(out, configHeaders(), configRows(cfg), nil))

			if assetsDir == "" {
				return nil
			}
			desc, err := catalog.ReadDir(assetsDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"#", "Slot", "Config", "Pixels", "File"},
				descriptorRows(cfg, desc, assetsDir),
				[]columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Slot config file (required)")
	cmd.Flags().StringVarP(&assetsDir, "image-assets", "i", "", "Asset set directory containing Contents.json")

	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func configHeaders() []string {
	headers := []string{"Name"}
	for _, f := range (slots.Attributes{}).Fields() {
		headers = append(headers, f.Key)
	}
	return append(headers, "pixels")
}

func configRows(cfg *slots.Config) [][]string {
	rows := make([][]string, 0, len(cfg.Slots))
	for _, s := range cfg.Slots {
		row := []string{s.Name}
		for _, f := range s.Fields() {
			row = append(row, f.Value)
		}
		rows = append(rows, append(row, pixels(s)))
	}
	return rows
}

func descriptorRows(cfg *slots.Config, desc *catalog.Descriptor, dir string) [][]string {
	rows := make([][]string, 0, len(desc.Images))
	for i, img := range desc.Images {
		match, size := "(none)", "-"
		if matches := cfg.Match(img.Attributes()); len(matches) > 0 {
			match = matches[0].Name
			if len(matches) > 1 {
				match += fmt.Sprintf(" (+%d)", len(matches)-1)
			}
			size = pixels(matches[0])
		}

		file := "-"
		if img.Filename != "" {
			file = img.Filename
			if _, err := os.Stat(filepath.Join(dir, img.Filename)); err != nil {
				file += " (missing)"
			}
		}

		rows = append(rows, []string{strconv.Itoa(i), img.Attributes().String(), match, size, file})
	}
	return rows
}

func pixels(s slots.Slot) string {
	w, h, err := s.Dimensions()
	if err != nil {
		return "?"
	}
	return fmt.Sprintf("%dx%d", w, h)
}
