package entities

import (
	"strings"
	"time"
)

type Category string

const (
	CategorySU           Category = "SU"
	CategoryThirteenPlus Category = "13+"
	CategoryEighteenPlus Category = "18+"
)

// CategoryAll is accepted in filters and means "no category filter".
const CategoryAll = "all"

// Legacy spellings found in older payloads. They are accepted on input and
// normalized to the canonical values; they are never emitted.
var legacyCategories = map[string]Category{
	"THIRTEEN_PLUS": CategoryThirteenPlus,
	"EIGHTEEN_PLUS": CategoryEighteenPlus,
}

// Categories lists the canonical category values.
func Categories() []Category {
	return []Category{CategorySU, CategoryThirteenPlus, CategoryEighteenPlus}
}

// ParseCategory normalizes a category string, accepting the legacy
// spellings. The boolean is false for anything else.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	switch Category(s) {
	case CategorySU, CategoryThirteenPlus, CategoryEighteenPlus:
		return Category(s), true
	}
	if c, ok := legacyCategories[strings.ToUpper(s)]; ok {
		return c, true
	}
	return "", false
}

func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

type Book struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"index;size:512" json:"title"`
	Author      string    `gorm:"index;size:256" json:"author"`
	Year        int       `gorm:"index" json:"year"`
	Category    Category  `gorm:"index;size:8" json:"category"`
	Cover       string    `gorm:"size:1024" json:"cover"`
	File        string    `gorm:"size:1024" json:"file"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedBy   string    `gorm:"size:36" json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FileUpload is a file payload that still has to be stored.
type FileUpload struct {
	Name string
	Data []byte
}

// Asset is a cover or PDF: either a reference to an already stored file or
// an upload payload.
type Asset struct {
	Ref    string
	Upload *FileUpload
}

func (a Asset) HasUpload() bool {
	return a.Upload != nil
}

func (a Asset) IsZero() bool {
	return a.Ref == "" && a.Upload == nil
}

// AssetRef is a convenience constructor for reference assets.
func AssetRef(ref string) Asset {
	return Asset{Ref: ref}
}

type CreateBookRequest struct {
	Title       string
	Author      string
	Year        int
	Category    Category
	Description string
	Cover       Asset
	File        Asset
	CreatedBy   string
}

// UpdateBookRequest describes a partial update; nil fields stay unchanged.
type UpdateBookRequest struct {
	ID          string
	Title       *string
	Author      *string
	Year        *int
	Category    *Category
	Description *string
	Cover       *Asset
	File        *Asset
}

type BookFilters struct {
	Search   string
	Category string
	Year     int
	Author   string
}

// HasCategory reports whether the filter restricts the category.
func (f BookFilters) HasCategory() bool {
	c := strings.TrimSpace(f.Category)
	return c != "" && !strings.EqualFold(c, CategoryAll)
}
