package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/formwork/internal/proto"
	"github.com/agentic-research/formwork/internal/store"
	"github.com/agentic-research/formwork/internal/workspace"
)

var (
	projectDir  string
	catalogPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "Project directory")
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "Component catalog (HCL); defaults to <project>/catalog.hcl")
}

var rootCmd = &cobra.Command{
	Use:   "formwork",
	Short: "Formwork: the project model behind the visual builder",
	Long: `Formwork holds a builder project as editable syntax trees: view files
become component trees with structural insert/remove/replace operations,
imports are tracked per file, and every logical edit is undoable.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadWorkspace opens the project directory into a fresh workspace and
// registers the component catalog when one is present.
func loadWorkspace() (*workspace.Workspace, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	configs, err := store.ImportTree(osfs.New(abs), ".")
	if err != nil {
		return nil, fmt.Errorf("import project %s: %w", abs, err)
	}

	ws := workspace.New()
	if len(configs) > 0 {
		if err := ws.AddFiles(configs); err != nil {
			return nil, err
		}
	}

	catalog := catalogPath
	if catalog == "" {
		catalog = filepath.Join(abs, "catalog.hcl")
		if _, err := os.Stat(catalog); err != nil {
			return ws, nil // no catalog is fine; prototypes just stay empty
		}
	}
	protos, err := proto.LoadCatalog(catalog)
	if err != nil {
		return nil, err
	}
	ws.SetComponentPrototypes(protos)
	return ws, nil
}

// saveWorkspace writes the workspace's files back to the project directory.
func saveWorkspace(ws *workspace.Workspace) error {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("resolve project dir: %w", err)
	}
	return store.ExportTree(osfs.New(abs), ".", ws.ListFiles())
}
