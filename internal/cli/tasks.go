package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sandeepkv93/taskmaster/internal/commands"
	"github.com/sandeepkv93/taskmaster/internal/model"
	"github.com/sandeepkv93/taskmaster/internal/view"
	"github.com/spf13/cobra"
)

const shortIDLen = 8

func newAddCmd(opts *rootOptions) *cobra.Command {
	var due string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Long: `Add a task to the end of the list. Words are joined into the task text.

--due accepts today, tomorrow, yesterday, YYYY-MM-DD, "YYYY-MM-DD HH:MM",
YYYY-MM-DDTHH:MM or an RFC 3339 timestamp.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dueAt *time.Time
			if due != "" {
				parsed, err := commands.ParseDue(due, time.Now())
				if err != nil {
					return err
				}
				dueAt = &parsed
			}
			task, err := opts.app.Store.Add(cmd.Context(), strings.Join(args, " "), dueAt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", shortID(task.ID), task.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var category, sortKey string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a view",
		Long: `List tasks. --view is one of all, active, completed, due_today or overdue;
--sort is one of created, due, priority or manual. Both default to the
configured values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.app.Config
			c, k := cfg.DefaultView, cfg.DefaultSort
			var err error
			if category != "" {
				if c, err = view.ParseCategory(category); err != nil {
					return err
				}
			}
			if sortKey != "" {
				if k, err = view.ParseSortKey(sortKey); err != nil {
					return err
				}
			}
			now := time.Now()
			tasks := view.Derive(opts.app.Store.Tasks(), view.Options{Category: c, Sort: k, Now: now})
			printTasks(cmd.OutOrStdout(), c, tasks, now)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "view", "", "category to show")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key")
	return cmd
}

func printTasks(w io.Writer, c view.Category, tasks []model.Task, now time.Time) {
	fmt.Fprintf(w, "== %s (%d) ==\n", strings.ToUpper(c.Label()), len(tasks))
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	fmt.Fprintf(w, "  %-8s %-4s %-6s %-16s %s\n", "ID", "DONE", "PRI", "DUE", "TEXT")
	for _, t := range tasks {
		done := ""
		if t.Completed {
			done = "x"
		}
		due := "-"
		if t.HasDueDate() {
			due = t.DueDate.In(now.Location()).Format("2006-01-02 15:04")
		}
		flag := ""
		switch {
		case view.IsOverdue(t, now):
			flag = " [overdue]"
		case view.IsDueToday(t, now):
			flag = " [due today]"
		}
		fmt.Fprintf(w, "  %-8s %-4s %-6s %-16s %s%s\n", shortID(t.ID), done, t.Priority, due, t.Text, flag)
	}
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.app.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			toggled, _, err := opts.app.Store.Toggle(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			state := "active"
			if toggled.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is %s\n", shortID(t.ID), t.Text, state)
			return nil
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.app.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			if _, err := opts.app.Store.Delete(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", shortID(t.ID), t.Text)
			return nil
		},
	}
}

func newPriorityCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <high|medium|low>",
		Short: "Set a task's priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.app.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			p, err := model.ParsePriority(args[1])
			if err != nil {
				return err
			}
			if _, err := opts.app.Store.ChangePriority(cmd.Context(), t.ID, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s priority\n", shortID(t.ID), t.Text, p)
			return nil
		},
	}
}

func newReorderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Set the manual order",
		Long:  `Set the manual order. Every task must be named exactly once, by id or unique id prefix.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]string, 0, len(args))
			for _, ref := range args {
				t, err := opts.app.Store.Resolve(ref)
				if err != nil {
					return err
				}
				ids = append(ids, t.ID)
			}
			if err := opts.app.Store.Reorder(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reordered %d tasks\n", len(ids))
			return nil
		},
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := opts.app.Store.ClearCompleted(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d completed tasks\n", removed)
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
