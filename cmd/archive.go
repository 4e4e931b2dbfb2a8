package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/formwork/internal/store"
	"github.com/agentic-research/formwork/internal/workspace"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <project.db>",
	Short: "Snapshot the project into a SQLite archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		files := ws.ListFiles()
		if err := store.SaveArchive(args[0], files); err != nil {
			return err
		}
		fmt.Printf("Archived %d files to %s\n", len(files), args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <project.db>",
	Short: "Restore a SQLite archive into the project directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configs, err := store.LoadArchive(args[0])
		if err != nil {
			return err
		}
		ws := workspace.New()
		if err := ws.AddFiles(configs); err != nil {
			return err
		}
		if err := saveWorkspace(ws); err != nil {
			return err
		}
		fmt.Printf("Restored %d files from %s\n", len(configs), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
}
