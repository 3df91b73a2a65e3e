package catalog

import (
	"sort"
	"strings"
)

// Filter returns the courses satisfying every active predicate of cr,
// ordered by its sort key. It is a pure function: total over valid
// input, no I/O, no failure path. Validation happens at the boundary
// (BuildCriteria / Criteria.Validate), never here.
func Filter(courses []Course, cr Criteria) []Course {
	out := make([]Course, 0, len(courses))
	for _, course := range courses {
		if Matches(course, cr) {
			out = append(out, course)
		}
	}
	sortCourses(out, cr.Sort)
	return out
}

// Matches combines all predicates with logical AND. An inactive filter
// always passes; an empty level/language set means "no restriction",
// not "no course matches".
func Matches(c Course, cr Criteria) bool {
	return matchesSearch(c, cr.Search) &&
		matchesCategory(c, cr.CategoryID) &&
		matchesSubcategory(c, cr.SubcategoryID) &&
		matchesPrice(c, cr.Price) &&
		matchesLevels(c, cr.Levels) &&
		matchesLanguages(c, cr.Languages) &&
		matchesRating(c, cr.MinRating)
}

func matchesSearch(c Course, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(c.Title), needle) ||
		strings.Contains(strings.ToLower(c.Description), needle)
}

func matchesCategory(c Course, categoryID string) bool {
	return categoryID == "" || c.CategoryID == categoryID
}

func matchesSubcategory(c Course, subcategoryID string) bool {
	return subcategoryID == "" || c.HasSubcategory(subcategoryID)
}

func matchesPrice(c Course, band *PriceRange) bool {
	if band == nil {
		return true
	}
	price := c.EffectivePrice()
	return price.GreaterThanOrEqual(band.Min) && price.LessThanOrEqual(band.Max)
}

func matchesLevels(c Course, levels []Level) bool {
	if len(levels) == 0 {
		return true
	}
	for _, l := range levels {
		if c.Level == l {
			return true
		}
	}
	return false
}

func matchesLanguages(c Course, languages []string) bool {
	if len(languages) == 0 {
		return true
	}
	for _, lang := range languages {
		if strings.EqualFold(c.Language, lang) {
			return true
		}
	}
	return false
}

func matchesRating(c Course, min *float64) bool {
	return min == nil || c.Rating >= *min
}

// sortCourses orders in place by the sort key. Ties always break by
// ascending course ID so repeated calls and adjacent pages agree on the
// order.
func sortCourses(courses []Course, key SortKey) {
	sort.SliceStable(courses, func(i, j int) bool {
		return courseLess(courses[i], courses[j], key)
	})
}

func courseLess(a, b Course, key SortKey) bool {
	switch key {
	case SortPopular:
		if a.Students != b.Students {
			return a.Students > b.Students
		}
	case SortHighestRated:
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
	case SortNewest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
	case SortPriceAsc:
		if cmp := a.EffectivePrice().Cmp(b.EffectivePrice()); cmp != 0 {
			return cmp < 0
		}
	case SortPriceDesc:
		if cmp := a.EffectivePrice().Cmp(b.EffectivePrice()); cmp != 0 {
			return cmp > 0
		}
	}
	return a.ID < b.ID
}

// Page is a derived view over an already filtered and sorted sequence:
// items at zero-based offset (page-1)*size through min(total, page*size).
// A page beyond the end is an empty slice, not an error.
func Page(items []Course, page, size int) []Course {
	if page < 1 || size < 1 {
		return []Course{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []Course{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages reports how many pages of the given size cover total items.
func TotalPages(total, size int) int {
	if total <= 0 || size < 1 {
		return 0
	}
	return (total + size - 1) / size
}
