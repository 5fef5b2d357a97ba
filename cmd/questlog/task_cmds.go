package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/quest"
)

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q is not a number", s)
	}
	return i, nil
}

func newTaskCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage quest objectives",
	}

	var hidden bool
	add := &cobra.Command{
		Use:   "add <quest-id> <name>",
		Short: "Add an objective",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			q, err := e.lookup(args[0])
			if err != nil {
				return err
			}
			if !q.AddTask(model.TaskRecord{Name: args[1], Hidden: hidden}) {
				return fmt.Errorf("objective needs a name")
			}
			out, err := q.Save(cmd.Context())
			if err := saved("quest", out, err); err != nil {
				return err
			}
			e.broadcaster.RefreshQuest(cmd.Context(), q.ID(), false)
			fmt.Fprintln(cmd.OutOrStdout(), len(q.Tasks)-1)
			return nil
		}),
	}
	add.Flags().BoolVar(&hidden, "hidden", false, "hide the objective from players")

	toggle := &cobra.Command{
		Use:   "toggle <quest-id> <index>",
		Short: "Advance an objective: open, done, failed, open",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			idx, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			out, err := e.tracker.HandleTaskClick(cmd.Context(), args[0], idx)
			if err := saved("objective", out, err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.db.GetQuest(args[0]).Tasks[idx].State())
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "remove <quest-id> <index>",
		Short: "Remove an objective",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			return editQuest(cmd, e, args, func(q *quest.Quest, idx int) bool { return q.RemoveTask(idx) })
		}),
	}

	cmd.AddCommand(add, toggle, remove)
	return cmd
}

func newRewardCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Manage quest rewards",
	}

	var rec model.RewardRecord
	var name, img string
	add := &cobra.Command{
		Use:   "add <quest-id>",
		Short: "Add a reward",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			q, err := e.lookup(args[0])
			if err != nil {
				return err
			}
			rec.Data = map[string]any{"name": name, "img": img}
			if _, err := model.CreateReward(rec); err != nil {
				return err
			}
			q.AddReward(rec)
			out, err := q.Save(cmd.Context())
			if err := saved("quest", out, err); err != nil {
				return err
			}
			e.broadcaster.RefreshQuest(cmd.Context(), q.ID(), false)
			fmt.Fprintln(cmd.OutOrStdout(), len(q.Rewards)-1)
			return nil
		}),
	}
	add.Flags().StringVar(&rec.Type, "type", model.RewardTypeItem, "reward type: item or abstract")
	add.Flags().StringVar(&name, "name", "", "reward name")
	add.Flags().StringVar(&img, "img", "icons/svg/item-bag.svg", "reward image")
	add.Flags().BoolVar(&rec.Hidden, "hidden", false, "hide the reward from players")

	toggle := &cobra.Command{
		Use:   "toggle <quest-id> <index>",
		Short: "Show or hide a reward for players",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(opts, func(cmd *cobra.Command, e *env, args []string) error {
			return editQuest(cmd, e, args, func(q *quest.Quest, idx int) bool {
				if idx < 0 || idx >= len(q.Rewards) {
					return false
				}
				q.Rewards[idx].ToggleVisible()
				return true
			})
		}),
	}

	cmd.AddCommand(add, toggle)
	return cmd
}

// editQuest applies fn to the quest and index in args and saves the quest.
func editQuest(cmd *cobra.Command, e *env, args []string, fn func(q *quest.Quest, idx int) bool) error {
	idx, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	q, err := e.lookup(args[0])
	if err != nil {
		return err
	}
	if !fn(q, idx) {
		return fmt.Errorf("quest %s has no entry at index %d", q.ID(), idx)
	}
	out, err := q.Save(cmd.Context())
	if err := saved("quest", out, err); err != nil {
		return err
	}
	e.broadcaster.RefreshQuest(cmd.Context(), q.ID(), false)
	return nil
}
