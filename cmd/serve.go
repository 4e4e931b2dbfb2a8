package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/agentic-research/formwork/internal/proto"
	"github.com/agentic-research/formwork/internal/source"
	"github.com/agentic-research/formwork/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project over MCP (stdio) for agent-driven editing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		s := server.NewMCPServer("formwork", "0.1.0", server.WithToolCapabilities(false))
		registerTools(s, ws)
		return server.ServeStdio(s)
	},
}

func registerTools(s *server.MCPServer, ws *workspace.Workspace) {
	s.AddTool(
		mcp.NewTool("list_files",
			mcp.WithDescription("List the project files with their kinds"),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var b strings.Builder
			for _, name := range ws.Filenames() {
				f, err := ws.GetFile(name)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				fmt.Fprintf(&b, "%s\t%s\n", f.Kind(), name)
			}
			return mcp.NewToolResultText(b.String()), nil
		},
	)

	s.AddTool(
		mcp.NewTool("show_file",
			mcp.WithDescription("Print one file's rendered text and, for views, its node tree"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Project-relative filename")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("file")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			f, err := ws.GetFile(name)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			var b strings.Builder
			b.WriteString(f.Text())
			if v, ok := f.View(); ok {
				b.WriteString("---\n")
				writeTree(&b, v.Root(), 0)
			}
			return mcp.NewToolResultText(b.String()), nil
		},
	)

	s.AddTool(
		mcp.NewTool("insert_node",
			mcp.WithDescription("Instantiate a component under a parent node in a view file"),
			mcp.WithString("file", mcp.Required(), mcp.Description("View filename")),
			mcp.WithNumber("parent", mcp.Required(), mcp.Description("Parent node id")),
			mcp.WithString("component", mcp.Required(), mcp.Description("Prototype name from the catalog")),
			mcp.WithString("position", mcp.Description("append | prepend | before | after (default append)")),
			mcp.WithNumber("anchor", mcp.Description("Sibling id for before/after")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			file, err := req.RequireString("file")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			parent, err := req.RequireFloat("parent")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			component, err := req.RequireString("component")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			pos, err := parsePosition(req.GetString("position", "append"), uint32(req.GetFloat("anchor", 0)))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			id, err := ws.InsertNode(file, source.NodeID(parent), proto.ByName(component), pos)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("inserted %s as #%d", component, id)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("remove_node",
			mcp.WithDescription("Destroy the subtree rooted at a node"),
			mcp.WithString("file", mcp.Required(), mcp.Description("View filename")),
			mcp.WithNumber("node", mcp.Required(), mcp.Description("Node id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			file, err := req.RequireString("file")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			node, err := req.RequireFloat("node")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := ws.RemoveNode(file, source.NodeID(node)); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("removed #%d", source.NodeID(node))), nil
		},
	)

	s.AddTool(
		mcp.NewTool("set_attribute",
			mcp.WithDescription("Set or remove one attribute on a node"),
			mcp.WithString("file", mcp.Required(), mcp.Description("View filename")),
			mcp.WithNumber("node", mcp.Required(), mcp.Description("Node id")),
			mcp.WithString("name", mcp.Required(), mcp.Description("Attribute name")),
			mcp.WithString("value", mcp.Description("Attribute value; empty when omitted")),
			mcp.WithBoolean("expr", mcp.Description("Treat value as a raw expression instead of a string literal")),
			mcp.WithBoolean("remove", mcp.Description("Remove the attribute")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			file, err := req.RequireString("file")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			node, err := req.RequireFloat("node")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			var v *source.Value
			if !req.GetBool("remove", false) {
				val := source.Str(req.GetString("value", ""))
				if req.GetBool("expr", false) {
					val = source.Expr(val.Text)
				}
				v = &val
			}
			if err := ws.UpdateNodeAttribute(file, source.NodeID(node), name, v); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText("ok"), nil
		},
	)

	s.AddTool(
		mcp.NewTool("set_data",
			mcp.WithDescription("Write a JSONPath-addressed value in a data file"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Data filename")),
			mcp.WithString("path", mcp.Required(), mcp.Description("JSONPath expression, e.g. $.app.theme")),
			mcp.WithString("value", mcp.Description("JSON-encoded value; a bare word is taken as a string")),
			mcp.WithBoolean("remove", mcp.Description("Delete the addressed values")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			file, err := req.RequireString("file")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			path, err := req.RequireString("path")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if req.GetBool("remove", false) {
				if err := ws.DeleteDataValue(file, path); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return mcp.NewToolResultText("ok"), nil
			}
			raw := req.GetString("value", "")
			var val any
			if err := json.Unmarshal([]byte(raw), &val); err != nil {
				val = raw
			}
			if err := ws.UpdateDataValue(file, path, val); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText("ok"), nil
		},
	)

	s.AddTool(
		mcp.NewTool("dependents",
			mcp.WithDescription("List the files importing from a module"),
			mcp.WithString("module", mcp.Required(), mcp.Description("Module source, e.g. antd")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			module, err := req.RequireString("module")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(strings.Join(ws.DependentsOf(module), "\n")), nil
		},
	)

	s.AddTool(
		mcp.NewTool("undo",
			mcp.WithDescription("Undo the most recent edit"),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := ws.Undo(); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText("ok"), nil
		},
	)

	s.AddTool(
		mcp.NewTool("redo",
			mcp.WithDescription("Redo the most recently undone edit"),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := ws.Redo(); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText("ok"), nil
		},
	)

	s.AddTool(
		mcp.NewTool("save",
			mcp.WithDescription("Write the project files back to the project directory"),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := saveWorkspace(ws); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText("saved"), nil
		},
	)
}

func writeTree(b *strings.Builder, n *source.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsText() {
		fmt.Fprintf(b, "%s#%d text %q\n", indent, n.ID(), n.Text())
	} else {
		fmt.Fprintf(b, "%s#%d <%s> (%d attrs)\n", indent, n.ID(), n.Component, len(n.Attrs()))
	}
	for _, c := range n.Children() {
		writeTree(b, c, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
