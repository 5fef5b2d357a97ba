package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/quest"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file and create the quest folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(opts.configPath); os.IsNotExist(err) {
				cfg, _, err := opts.loadConfig()
				if err != nil {
					return err
				}
				if err := model.SaveConfig(opts.configPath, cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.configPath)
			}
			return withEnv(opts, func(cmd *cobra.Command, e *env, _ []string) error {
				f, err := e.db.Folder().InitializeJournals(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "quest folder %q ready\n", f.Name)
				return nil
			})(cmd, nil)
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the quests you can see",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, _ []string) error {
			var st model.Status
			if status != "" {
				var err error
				if st, err = model.ParseStatus(status); err != nil {
					return err
				}
			}
			quests := e.db.SortCollect(quest.CollectOptions{Status: st, Observable: true})
			if len(quests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no quests")
				return nil
			}

			primary := e.settings.PrimaryQuest()
			rows := quest.Transform(quests, func(q *quest.Quest) []string {
				en := q.Enrich(e.user)
				name := en.Name
				if en.ID == primary {
					name = "* " + name
				}
				return []string{
					en.ID,
					name,
					string(en.Status),
					fmt.Sprintf("%d/%d", en.TasksDone, en.TasksTotal),
					en.ParentName,
				}
			})
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "NAME", "STATUS", "TASKS", "PARENT").
				Rows(rows...)
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "only list quests with this status")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var o quest.CreateOptions
	var status string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a quest",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			o.Name = args[0]
			if status != "" {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				o.Status = st
			}
			if o.GiverName != "" && o.Giver == "" {
				o.Giver = model.GiverAbstract
			}
			q, err := e.db.CreateQuest(cmd.Context(), o)
			if err != nil {
				return err
			}
			e.broadcaster.RefreshAll(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), q.ID())
			return nil
		}),
	}
	cmd.Flags().StringVar(&o.GiverName, "giver", "", "name of the quest giver")
	cmd.Flags().StringVar(&o.Parent, "parent", "", "parent quest id")
	cmd.Flags().StringVar(&o.Description, "description", "", "quest description (markdown)")
	cmd.Flags().StringVar(&status, "status", "", "initial status")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a quest",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			q, err := e.lookup(args[0])
			if err != nil {
				return err
			}
			if !q.IsObservable(e.user) {
				return fmt.Errorf("quest %s: %w", args[0], quest.ErrForbidden)
			}
			writeQuest(cmd, q.Enrich(e.user))
			return nil
		}),
	}
}

func writeQuest(cmd *cobra.Command, en quest.Enriched) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s [%s]\n", en.Name, en.Status)
	if en.Giver.Name != "" {
		fmt.Fprintf(w, "Giver: %s\n", en.Giver.Name)
	}
	if en.ParentName != "" {
		fmt.Fprintf(w, "Parent: %s (%s)\n", en.ParentName, en.ParentID)
	}
	if en.Description != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(en.Description))
	}
	if len(en.Tasks) > 0 {
		fmt.Fprintf(w, "\nObjectives (%d/%d):\n", en.TasksDone, en.TasksTotal)
		for _, t := range en.Tasks {
			fmt.Fprintf(w, "  %d. [%s] %s\n", t.Index, taskMark(t.State), t.Name)
		}
	}
	if len(en.Rewards) > 0 {
		fmt.Fprintln(w, "\nRewards:")
		for _, r := range en.Rewards {
			fmt.Fprintf(w, "  %d. %s (%s)\n", r.Index, r.Name, r.Type)
		}
	}
	if len(en.Subquests) > 0 {
		fmt.Fprintln(w, "\nSubquests:")
		for _, s := range en.Subquests {
			fmt.Fprintf(w, "  %s [%s] %s\n", s.ID, s.Status, s.Name)
		}
	}
	if en.GMNotes != "" {
		fmt.Fprintf(w, "\nGM notes:\n%s\n", strings.TrimSpace(en.GMNotes))
	}
}

func taskMark(s model.TaskState) string {
	switch s {
	case model.TaskStateChecked:
		return "x"
	case model.TaskStateFailed:
		return "-"
	default:
		return " "
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quest and attach its subquests to its parent",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			res, err := e.db.DeleteQuest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e.broadcaster.RefreshAll(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", res.DeletedID)
			for _, id := range res.SavedIDs {
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", id)
			}
			return nil
		}),
	}
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Change the status of a quest",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			st, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}
			q, err := e.lookup(args[0])
			if err != nil {
				return err
			}
			out, err := q.Move(cmd.Context(), st)
			if err := saved("quest", out, err); err != nil {
				return err
			}
			e.broadcaster.RefreshAll(cmd.Context())
			return nil
		}),
	}
}

func newPrimaryCmd(opts *rootOptions) *cobra.Command {
	var clearFlag bool
	cmd := &cobra.Command{
		Use:   "primary [id]",
		Short: "Pin the primary quest shown by the tracker",
		Args:  cobra.MaximumNArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			if !e.user.IsGM() {
				return fmt.Errorf("setting the primary quest: %w", quest.ErrForbidden)
			}
			var id string
			switch {
			case clearFlag:
			case len(args) == 1:
				q, err := e.lookup(args[0])
				if err != nil {
					return err
				}
				id = q.ID()
			default:
				fmt.Fprintln(cmd.OutOrStdout(), e.settings.PrimaryQuest())
				return nil
			}
			if err := e.settings.SetPrimaryQuest(cmd.Context(), id); err != nil {
				return err
			}
			e.broadcaster.RefreshAll(cmd.Context())
			return nil
		}),
	}
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "unset the primary quest")
	return cmd
}

// Boolean world settings exposed on the command line.
var boolSettings = map[string]func(e *env) func(cmd *cobra.Command, v bool) error{
	"trusted-edit": func(e *env) func(*cobra.Command, bool) error {
		return func(cmd *cobra.Command, v bool) error { return e.settings.SetTrustedPlayerEdit(cmd.Context(), v) }
	},
	"resizable": func(e *env) func(*cobra.Command, bool) error {
		return func(cmd *cobra.Command, v bool) error { return e.settings.SetTrackerResizable(cmd.Context(), v) }
	},
	"primary-default": func(e *env) func(*cobra.Command, bool) error {
		return func(cmd *cobra.Command, v bool) error { return e.settings.SetShowOnlyPrimaryDefault(cmd.Context(), v) }
	},
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "set <trusted-edit|resizable|primary-default> <on|off>",
		Short:     "Change a world setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"trusted-edit", "resizable", "primary-default"},
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			if !e.user.IsGM() {
				return fmt.Errorf("changing settings: %w", quest.ErrForbidden)
			}
			set, ok := boolSettings[args[0]]
			if !ok {
				return fmt.Errorf("unknown setting %q", args[0])
			}
			var v bool
			switch args[1] {
			case "on":
				v = true
			case "off":
			default:
				return fmt.Errorf("value must be on or off, got %q", args[1])
			}
			if err := set(e)(cmd, v); err != nil {
				return err
			}
			e.broadcaster.RefreshAll(cmd.Context())
			return nil
		}),
	}
}
