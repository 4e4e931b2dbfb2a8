package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const sampleCatalog = `component "Page" {
  title            = "Page"
  kind             = "base"
  accepts_children = true

  prop "title" {
    type  = "string"
    group = "basic"
  }
}

component "Card" {
  title            = "Card"
  kind             = "base"
  accepts_children = true

  import {
    source = "antd"
  }

  prop "title" {
    type  = "string"
    group = "basic"
  }
}

component "Button" {
  title = "Button"
  kind  = "base"

  import {
    source = "antd"
  }

  prop "type" {
    type    = "string"
    default = "primary"
    group   = "basic"
  }
  prop "onClick" {
    type  = "function"
    group = "events"
  }
}

component "Input" {
  title = "Input"
  kind  = "base"

  import {
    source = "antd"
  }

  prop "placeholder" {
    type  = "string"
    group = "basic"
  }
}
`

const sampleView = `import { Button } from 'antd';

export default function Home() {
  return (
    <Page title="Home">
      <Button type="primary">
        Get started
      </Button>
    </Page>
  );
}
`

const sampleData = `{
  "app": {
    "name": "sample",
    "theme": "light"
  }
}
`

const sampleRoutes = `export const routes = [
  { path: '/', view: 'pages/home/index' },
];
`

const sampleService = `export async function fetchJSON(url: string) {
  const res = await fetch(url);
  return res.json();
}
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a minimal builder project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := projectDir
		if len(args) == 1 {
			dir = args[0]
		}
		files := map[string]string{
			"catalog.hcl":          sampleCatalog,
			"pages/home/index.tsx": sampleView,
			"data/app.json":        sampleData,
			"routes.ts":            sampleRoutes,
			"services/api.ts":      sampleService,
		}
		for name, content := range files {
			target := filepath.Join(dir, filepath.FromSlash(name))
			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("refusing to overwrite %s", target)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("mkdir for %s: %w", name, err)
			}
			if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
		}
		fmt.Printf("Initialized project in %s (%d files)\n", dir, len(files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
