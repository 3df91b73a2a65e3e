package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelAllLevels    Level = "all_levels"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAllLevels:
		return true
	}
	return false
}

type Subcategory struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Category struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Course is a read-only projection of server state. The client never
// edits a course; it only filters, sorts and references it by ID.
type Course struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Discount       decimal.Decimal `json:"discount"`
	CategoryID     string          `json:"category_id"`
	SubcategoryIDs []string        `json:"subcategory_ids"`
	Level          Level           `json:"level"`
	Language       string          `json:"language"`
	Rating         float64         `json:"rating"`
	Students       int             `json:"students"`
	CreatedAt      time.Time       `json:"created_at"`
}

var hundred = decimal.NewFromInt(100)

// EffectivePrice is the price after the discount percentage is applied.
// It is the single price used for range filtering and price sorting.
func (c Course) EffectivePrice() decimal.Decimal {
	if c.Discount.IsZero() {
		return c.Price
	}
	return c.Price.Mul(hundred.Sub(c.Discount)).Div(hundred)
}

func (c Course) HasSubcategory(subID string) bool {
	for _, id := range c.SubcategoryIDs {
		if id == subID {
			return true
		}
	}
	return false
}

// CategoryIndex resolves subcategory membership. A subcategory belongs to
// exactly one category.
type CategoryIndex struct {
	byID     map[string]Category
	subToCat map[string]string
}

func NewCategoryIndex(categories []Category) CategoryIndex {
	ix := CategoryIndex{
		byID:     make(map[string]Category, len(categories)),
		subToCat: make(map[string]string),
	}
	for _, cat := range categories {
		ix.byID[cat.ID] = cat
		for _, sub := range cat.Subcategories {
			ix.subToCat[sub.ID] = cat.ID
		}
	}
	return ix
}

func (ix CategoryIndex) Category(id string) (Category, bool) {
	cat, ok := ix.byID[id]
	return cat, ok
}

// Belongs reports whether subID is a subcategory of catID.
func (ix CategoryIndex) Belongs(catID, subID string) bool {
	parent, ok := ix.subToCat[subID]
	return ok && parent == catID
}
