package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"apikb/pkg/ids"
	"apikb/pkg/model"
	"apikb/pkg/scanner"
)

var scanPatterns []string

var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Register a project and scan it for endpoints and functions",
	Long: `Registers the directory as a project (reading apikb.yaml when present)
and runs the heuristic scanner over every matching file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		name := filepath.Base(root)
		description := ""
		patterns := scanPatterns

		manifest, err := scanner.LoadManifest(root)
		if err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}
		if manifest != nil {
			if manifest.Name != "" {
				name = manifest.Name
			}
			description = manifest.Description
			if len(patterns) == 0 {
				patterns = manifest.Patterns
			}
		}
		if len(patterns) == 0 {
			patterns = cfg.ScanPatterns
		}

		project := &model.Project{
			ID:           ids.ProjectID(name, root),
			Name:         name,
			Path:         root,
			Description:  description,
			APIEndpoints: []string{},
			Functions:    []string{},
		}
		if err := store.SaveProject(project); err != nil {
			return err
		}

		report, err := scanner.New(store, log).ScanProject(project.ID, patterns)
		if err != nil {
			return err
		}

		fmt.Printf("Project %s (%s)\n", project.Name, project.ID)
		fmt.Printf("Scanned %d files: %d endpoints, %d functions\n",
			report.ScannedFiles, report.APIEndpoints, report.Functions)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanPatterns, "patterns", nil, "filename globs to scan (default from config)")
	rootCmd.AddCommand(scanCmd)
}
