package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-course-client/internal/catalog"
)

var browseFlags struct {
	search        string
	category      string
	subcategory   string
	minPrice      float64
	maxPrice      float64
	levels        []string
	languages     []string
	minRating     float64
	sort          string
	page          int
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List catalog courses matching the given filters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		params := catalog.CriteriaParams{
			Search:        browseFlags.search,
			CategoryID:    browseFlags.category,
			SubcategoryID: browseFlags.subcategory,
			Levels:        browseFlags.levels,
			Languages:     browseFlags.languages,
			Sort:          browseFlags.sort,
		}
		if cmd.Flags().Changed("min-price") || cmd.Flags().Changed("max-price") {
			params.MinPrice = &browseFlags.minPrice
			params.MaxPrice = &browseFlags.maxPrice
		}
		if cmd.Flags().Changed("min-rating") {
			params.MinRating = &browseFlags.minRating
		}

		courses, meta, err := client.Browse(cmd.Context(), params, browseFlags.page)
		if err != nil {
			return err
		}

		fmt.Printf("page %d/%d (%d courses on server)\n",
			meta.CurrentPage, meta.LastPage(), meta.Total)
		for _, c := range courses {
			fmt.Printf("%-12s %-45s %8s  %.1f★  %d students\n",
				c.ID, truncate(c.Title, 45), c.EffectivePrice().StringFixed(2),
				c.Rating, c.Students)
		}
		if len(courses) == 0 {
			fmt.Println("no courses match the current filters")
		}
		return nil
	},
}

func init() {
	f := browseCmd.Flags()
	f.StringVarP(&browseFlags.search, "search", "s", "", "substring match on title or description")
	f.StringVar(&browseFlags.category, "category", "", "category id")
	f.StringVar(&browseFlags.subcategory, "subcategory", "", "subcategory id (requires --category)")
	f.Float64Var(&browseFlags.minPrice, "min-price", 0, "minimum effective price")
	f.Float64Var(&browseFlags.maxPrice, "max-price", 0, "maximum effective price")
	f.StringSliceVar(&browseFlags.levels, "level", nil, "course levels (beginner|intermediate|advanced|all_levels)")
	f.StringSliceVar(&browseFlags.languages, "language", nil, "course languages")
	f.Float64Var(&browseFlags.minRating, "min-rating", 0, "minimum rating (0-5)")
	f.StringVar(&browseFlags.sort, "sort", "popular", "sort key (popular|highest_rated|newest|price_asc|price_desc)")
	f.IntVarP(&browseFlags.page, "page", "p", 1, "catalog page (1-based)")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
