package main

import (
	"github.com/spf13/cobra"

	"go-course-client/internal/intent"
)

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Manage the wishlist",
}

func init() {
	wishlistCmd.AddCommand(
		newToggleCmd("wishlist", func() *intent.Store { return client.Wishlist }),
		newListCmd("wishlist", func() *intent.Store { return client.Wishlist }),
		newClearCmd("wishlist", func() *intent.Store { return client.Wishlist }),
	)
}
