package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

func newBoardCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect and seed boards directly against the store",
	}
	cmd.AddCommand(newBoardShowCmd(opts), newBoardSeedCmd(opts))
	return cmd
}

func newBoardShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <board-id>",
		Short: "Print a board's columns and tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", domain.ErrInvalidID, args[0])
			}
			return withApplication(cmd.Context(), opts, func(ctx context.Context, app *application) error {
				view, err := app.boardService.GetBoard(ctx, boardID)
				if err != nil {
					return err
				}
				renderBoard(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
}

func newBoardSeedCmd(opts *rootOptions) *cobra.Command {
	var noDefaults bool
	cmd := &cobra.Command{
		Use:   "seed <name>",
		Short: "Create a board and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), opts, func(ctx context.Context, app *application) error {
				view, err := app.boardService.CreateBoard(ctx, args[0], !noDefaults)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), view.Board.ID)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&noDefaults, "no-default-columns", false, "create the board without the default columns")
	return cmd
}

// withApplication builds an application from the configured flags, runs fn
// and releases the application's resources.
func withApplication(ctx context.Context, opts *rootOptions, fn func(context.Context, *application) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.cleanup(ctx)
	return fn(ctx, app)
}

// renderBoard writes one table per column, tasks in position order.
func renderBoard(w io.Writer, view *board.BoardView) {
	fmt.Fprintf(w, "%s (%s)\n", view.Board.Name, view.Board.ID)
	if len(view.Columns) == 0 {
		fmt.Fprintln(w, "no columns")
		return
	}

	for _, cv := range view.Columns {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.SetTitle(columnTitle(cv))
		tw.AppendHeader(table.Row{"#", "Title", "Status", "Done %", "Parent"})
		for _, t := range cv.Tasks {
			parent := ""
			if t.ParentID != nil {
				parent = shortID(*t.ParentID)
			}
			tw.AppendRow(table.Row{t.Position, t.Title, t.Status, t.CompletionPercentage, parent})
		}
		tw.Render()
	}
}

func columnTitle(cv board.ColumnView) string {
	var b strings.Builder
	b.WriteString(cv.Column.Name)
	if cv.Column.Capacity != nil {
		fmt.Fprintf(&b, " [%d/%d]", cv.TaskCount, *cv.Column.Capacity)
	} else {
		fmt.Fprintf(&b, " [%d]", cv.TaskCount)
	}
	if cv.Column.IsTerminal {
		b.WriteString(" terminal")
	}
	if cv.OverCapacity {
		b.WriteString(" over capacity")
	}
	return b.String()
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
