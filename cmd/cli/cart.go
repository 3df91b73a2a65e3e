package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-course-client/internal/intent"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
}

func init() {
	cartCmd.AddCommand(
		newToggleCmd("cart", func() *intent.Store { return client.Cart }),
		newListCmd("cart", func() *intent.Store { return client.Cart }),
		newClearCmd("cart", func() *intent.Store { return client.Cart }),
	)
}

// The cart and wishlist commands are identical except for the store
// they act on, so both are built from the same constructors.

func newToggleCmd(kind string, store func() *intent.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <course-id>",
		Short: fmt.Sprintf("Flip a course's %s membership", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			s := store()
			if err := s.Toggle(cmd.Context(), id); err != nil {
				return err
			}
			if s.Contains(id) {
				fmt.Printf("course %s added to %s\n", id, kind)
			} else {
				fmt.Printf("course %s removed from %s\n", id, kind)
			}
			return nil
		},
	}
}

func newListCmd(kind string, store func() *intent.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("Show the %s after a full refresh from the server", kind),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := store()
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			printEntries(kind, s)
			return nil
		},
	}
}

func newClearCmd(kind string, store func() *intent.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: fmt.Sprintf("Remove every course from the %s", kind),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := store().Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("%s cleared\n", kind)
			return nil
		},
	}
}

func printEntries(kind string, s *intent.Store) {
	entries := s.Snapshot()
	if len(entries) == 0 {
		fmt.Printf("%s is empty\n", kind)
		return
	}
	for _, e := range entries {
		state := ""
		if e.Pending {
			state = " (pending)"
		}
		if e.Failed {
			state = " (failed)"
		}
		fmt.Printf("%s%s\n", e.CourseID, state)
	}
}
