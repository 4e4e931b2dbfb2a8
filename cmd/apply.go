package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/formwork/api"
	"github.com/agentic-research/formwork/internal/proto"
	"github.com/agentic-research/formwork/internal/source"
	"github.com/agentic-research/formwork/internal/workspace"
)

var applyCmd = &cobra.Command{
	Use:   "apply <script.json>",
	Short: "Apply a JSON edit script against the project and write the result back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		var script api.EditScript
		if err := json.Unmarshal(raw, &script); err != nil {
			return fmt.Errorf("decode script: %w", err)
		}

		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		for i, op := range script.Ops {
			if err := applyOp(ws, op); err != nil {
				return fmt.Errorf("op %d (%s): %w", i, op.Op, err)
			}
		}
		if err := saveWorkspace(ws); err != nil {
			return err
		}
		fmt.Printf("Applied %d ops\n", len(script.Ops))
		return nil
	},
}

func applyOp(ws *workspace.Workspace, op api.EditOp) error {
	switch op.Op {
	case "add-file":
		return ws.AddFile(api.FileConfig{
			Filename: op.File,
			Content:  op.Content,
			Kind:     api.KindForFilename(op.File),
		})
	case "update-file":
		return ws.UpdateFile(op.File, op.Content)
	case "remove-file":
		return ws.RemoveFile(op.File)
	case "rename-file":
		return ws.RenameFile(op.File, op.NewName)
	case "rename-folder":
		return ws.RenameFolder(op.File, op.NewName)
	case "insert":
		pos, err := parsePosition(op.Position, op.Anchor)
		if err != nil {
			return err
		}
		id, err := ws.InsertNode(op.File, source.NodeID(op.Parent), proto.ByName(op.Component), pos)
		if err != nil {
			return err
		}
		fmt.Printf("inserted %s as #%d\n", op.Component, id)
		return nil
	case "remove":
		return ws.RemoveNode(op.File, source.NodeID(op.Node))
	case "set-attr":
		var v *source.Value
		if !op.Remove {
			val := source.Str(op.Value)
			if op.Expr {
				val = source.Expr(op.Value)
			}
			v = &val
		}
		return ws.UpdateNodeAttribute(op.File, source.NodeID(op.Node), op.Name, v)
	case "set-data":
		if op.Remove {
			return ws.DeleteDataValue(op.File, op.Path)
		}
		// Value carries JSON; a bare word falls back to a plain string.
		var val any
		if err := json.Unmarshal([]byte(op.Value), &val); err != nil {
			val = op.Value
		}
		return ws.UpdateDataValue(op.File, op.Path, val)
	case "select":
		return ws.Select(op.File, source.NodeID(op.Node))
	case "undo":
		return ws.Undo()
	case "redo":
		return ws.Redo()
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func parsePosition(kind string, anchor uint32) (source.Position, error) {
	switch kind {
	case "", "append":
		return source.Append(), nil
	case "prepend":
		return source.Prepend(), nil
	case "before":
		return source.Before(source.NodeID(anchor)), nil
	case "after":
		return source.After(source.NodeID(anchor)), nil
	}
	return source.Position{}, fmt.Errorf("unknown position %q", kind)
}

func init() {
	rootCmd.AddCommand(applyCmd)
}
