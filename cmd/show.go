package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "List project files, or print one file's text and component tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			for _, name := range ws.Filenames() {
				f, err := ws.GetFile(name)
				if err != nil {
					return err
				}
				fmt.Printf("%-10s %s\n", f.Kind(), name)
			}
			return nil
		}

		f, err := ws.GetFile(args[0])
		if err != nil {
			return err
		}
		fmt.Print(f.Text())
		if v, ok := f.View(); ok {
			fmt.Println("---")
			var b strings.Builder
			writeTree(&b, v.Root(), 0)
			fmt.Print(b.String())
		}
		return nil
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps <module>",
	Short: "List the files importing from a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		for _, name := range ws.DependentsOf(args[0]) {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(depsCmd)
}
