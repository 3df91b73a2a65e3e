package catalog

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type SortKey string

const (
	SortPopular      SortKey = "popular"
	SortHighestRated SortKey = "highest_rated"
	SortNewest       SortKey = "newest"
	SortPriceAsc     SortKey = "price_asc"
	SortPriceDesc    SortKey = "price_desc"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortPopular, SortHighestRated, SortNewest, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Criteria is the complete set of active filter and sort parameters for
// one query against the catalog. It is a value object: With* methods
// return a modified copy and never touch I/O. An unset field means "no
// restriction"; in particular an empty level/language set matches every
// course rather than none.
type Criteria struct {
	Search        string
	CategoryID    string
	SubcategoryID string
	Price         *PriceRange
	Levels        []Level
	Languages     []string
	MinRating     *float64
	Sort          SortKey
}

func NewCriteria() Criteria {
	return Criteria{Sort: SortPopular}
}

// CriteriaParams is the boundary representation of a query, e.g. parsed
// from CLI flags or query strings. Build validates it and produces a
// Criteria; the engine itself never validates.
type CriteriaParams struct {
	Search        string   `validate:"max=500"`
	CategoryID    string   `validate:"max=64"`
	SubcategoryID string   `validate:"max=64"`
	MinPrice      *float64 `validate:"omitempty,gte=0"`
	MaxPrice      *float64 `validate:"omitempty,gte=0"`
	Levels        []string `validate:"dive,oneof=beginner intermediate advanced all_levels"`
	Languages     []string `validate:"dive,min=1,max=32"`
	MinRating     *float64 `validate:"omitempty,gte=0,lte=5"`
	Sort          string   `validate:"omitempty,oneof=popular highest_rated newest price_asc price_desc"`
}

var validate = validator.New()

// BuildCriteria validates params at the boundary and assembles a
// Criteria. Malformed input is rejected here; it never reaches the
// engine.
func BuildCriteria(p CriteriaParams) (Criteria, error) {
	if err := validate.Struct(p); err != nil {
		return Criteria{}, mapParamsError(err)
	}

	cr := NewCriteria()
	cr.Search = p.Search

	if p.CategoryID != "" {
		cr = cr.WithCategory(p.CategoryID)
		if p.SubcategoryID != "" {
			var err error
			cr, err = cr.WithSubcategory(p.SubcategoryID)
			if err != nil {
				return Criteria{}, err
			}
		}
	} else if p.SubcategoryID != "" {
		return Criteria{}, ErrSubcategoryWithoutCategory
	}

	if p.MinPrice != nil || p.MaxPrice != nil {
		min := decimal.Zero
		if p.MinPrice != nil {
			min = decimal.NewFromFloat(*p.MinPrice)
		}
		if p.MaxPrice == nil {
			return Criteria{}, ErrInvalidPriceRange
		}
		var err error
		cr, err = cr.WithPriceRange(min, decimal.NewFromFloat(*p.MaxPrice))
		if err != nil {
			return Criteria{}, err
		}
	}

	for _, raw := range p.Levels {
		cr = cr.WithLevel(Level(raw))
	}
	for _, lang := range p.Languages {
		cr = cr.WithLanguage(lang)
	}

	if p.MinRating != nil {
		var err error
		cr, err = cr.WithMinRating(*p.MinRating)
		if err != nil {
			return Criteria{}, err
		}
	}

	if p.Sort != "" {
		var err error
		cr, err = cr.WithSort(SortKey(p.Sort))
		if err != nil {
			return Criteria{}, err
		}
	}

	return cr, nil
}

func mapParamsError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "MinPrice", "MaxPrice":
			return ErrInvalidPriceRange
		case "MinRating":
			return ErrInvalidRating
		case "Sort":
			return ErrUnknownSortKey
		case "Levels":
			return ErrUnknownLevel
		}
	}
	return ErrInvalidPriceRange.WithMessage("Invalid criteria").WithCause(err)
}

// WithSearch sets the free-text filter. Matching is case-insensitive
// against title and description.
func (c Criteria) WithSearch(text string) Criteria {
	c.Search = text
	return c
}

// WithCategory selects a category. When the category changes, the
// subcategory selection is cleared in the same update; a subcategory
// reference outside its parent category is meaningless and must never
// be observable.
func (c Criteria) WithCategory(categoryID string) Criteria {
	if c.CategoryID != categoryID {
		c.SubcategoryID = ""
	}
	c.CategoryID = categoryID
	return c
}

func (c Criteria) WithSubcategory(subcategoryID string) (Criteria, error) {
	if subcategoryID != "" && c.CategoryID == "" {
		return c, ErrSubcategoryWithoutCategory
	}
	c.SubcategoryID = subcategoryID
	return c, nil
}

func (c Criteria) WithPriceRange(min, max decimal.Decimal) (Criteria, error) {
	if min.IsNegative() || min.GreaterThan(max) {
		return c, ErrInvalidPriceRange
	}
	c.Price = &PriceRange{Min: min, Max: max}
	return c, nil
}

func (c Criteria) WithoutPriceRange() Criteria {
	c.Price = nil
	return c
}

func (c Criteria) WithLevel(level Level) Criteria {
	if !level.Valid() || c.hasLevel(level) {
		return c
	}
	levels := make([]Level, len(c.Levels), len(c.Levels)+1)
	copy(levels, c.Levels)
	c.Levels = append(levels, level)
	return c
}

func (c Criteria) WithoutLevel(level Level) Criteria {
	levels := make([]Level, 0, len(c.Levels))
	for _, l := range c.Levels {
		if l != level {
			levels = append(levels, l)
		}
	}
	c.Levels = levels
	return c
}

func (c Criteria) WithLanguage(lang string) Criteria {
	if lang == "" || c.hasLanguage(lang) {
		return c
	}
	langs := make([]string, len(c.Languages), len(c.Languages)+1)
	copy(langs, c.Languages)
	c.Languages = append(langs, lang)
	return c
}

func (c Criteria) WithoutLanguage(lang string) Criteria {
	langs := make([]string, 0, len(c.Languages))
	for _, l := range c.Languages {
		if l != lang {
			langs = append(langs, l)
		}
	}
	c.Languages = langs
	return c
}

func (c Criteria) WithMinRating(rating float64) (Criteria, error) {
	if rating < 0 || rating > 5 {
		return c, ErrInvalidRating
	}
	c.MinRating = &rating
	return c, nil
}

func (c Criteria) WithoutMinRating() Criteria {
	c.MinRating = nil
	return c
}

func (c Criteria) WithSort(key SortKey) (Criteria, error) {
	if !key.Valid() {
		return c, ErrUnknownSortKey
	}
	c.Sort = key
	return c, nil
}

// Validate checks cross-field consistency against the category tree.
// Called at the boundary before the criteria reaches the engine.
func (c Criteria) Validate(ix CategoryIndex) error {
	if c.CategoryID == "" {
		if c.SubcategoryID != "" {
			return ErrSubcategoryWithoutCategory
		}
		return nil
	}
	if _, ok := ix.Category(c.CategoryID); !ok {
		return ErrCategoryNotFound
	}
	if c.SubcategoryID == "" {
		return nil
	}
	if !ix.Belongs(c.CategoryID, c.SubcategoryID) {
		return ErrSubcategoryOutsideCategory
	}
	return nil
}

// ActiveFilterCount reports how many filter dimensions are restricting
// the result set. Sort order is not a filter.
func (c Criteria) ActiveFilterCount() int {
	n := 0
	if strings.TrimSpace(c.Search) != "" {
		n++
	}
	if c.CategoryID != "" {
		n++
	}
	if c.SubcategoryID != "" {
		n++
	}
	if c.Price != nil {
		n++
	}
	if len(c.Levels) > 0 {
		n++
	}
	if len(c.Languages) > 0 {
		n++
	}
	if c.MinRating != nil {
		n++
	}
	return n
}

func (c Criteria) hasLevel(level Level) bool {
	for _, l := range c.Levels {
		if l == level {
			return true
		}
	}
	return false
}

func (c Criteria) hasLanguage(lang string) bool {
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
