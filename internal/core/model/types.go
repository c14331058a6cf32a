package model

import (
	"time"

	"github.com/mboven/canvass-replay/internal/util"
)

// Category identifies the kind of campaign activity a record describes.
type Category string

const (
	CategoryHouse  Category = "HOUSE"
	CategoryPoster Category = "POSTER"
)

// ParseCategory maps a raw type string to a Category.
// Unrecognized values report ok=false and are dropped by the normalizer.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryHouse:
		return CategoryHouse, true
	case CategoryPoster:
		return CategoryPoster, true
	}
	return "", false
}

// CategoryFilter restricts the visible set to one category, or passes all.
type CategoryFilter string

const (
	FilterAll    CategoryFilter = "ALL"
	FilterHouse  CategoryFilter = CategoryFilter(CategoryHouse)
	FilterPoster CategoryFilter = CategoryFilter(CategoryPoster)
)

// Matches reports whether a record of category c passes the filter.
func (f CategoryFilter) Matches(c Category) bool {
	return f == FilterAll || CategoryFilter(c) == f
}

// Next cycles through the filter values in display order.
func (f CategoryFilter) Next() CategoryFilter {
	switch f {
	case FilterAll:
		return FilterHouse
	case FilterHouse:
		return FilterPoster
	default:
		return FilterAll
	}
}

// ParseCategoryFilter maps a flag value to a CategoryFilter.
func ParseCategoryFilter(s string) (CategoryFilter, bool) {
	switch CategoryFilter(s) {
	case FilterAll, FilterHouse, FilterPoster:
		return CategoryFilter(s), true
	}
	return "", false
}

// RawActivity is a single record as it appears in dataset and export files.
// Coordinates are pointers so that missing fields are distinguishable from
// zero values.
type RawActivity struct {
	Date  string   `json:"date"`
	Type  string   `json:"type"`
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Count int      `json:"count"`
}

// ActivityRecord is a validated, immutable activity record. Coordinates are
// already privacy-blurred by the transform tool before they reach this type.
type ActivityRecord struct {
	Date     time.Time
	Category Category
	Lat      float64
	Lng      float64
	Count    int
}

// ProcessedActivity is an ActivityRecord enriched at load time with the
// timeline attributes that drive the reveal animation. Both derived fields
// are fixed for the record's lifetime.
type ProcessedActivity struct {
	ActivityRecord

	// DayIndex is the whole-day offset from the dataset start date.
	DayIndex int

	// RevealFraction is a deterministic pseudo-random value in [0,1)
	// selecting the instant within the record's day at which it appears.
	RevealFraction float64
}

// RevealTimestamp returns the synthetic reveal moment in milliseconds from
// the dataset start. It defines the reveal order used by the recent-window
// classifier.
func (p ProcessedActivity) RevealTimestamp() float64 {
	return float64(p.DayIndex)*util.DayMillis + p.RevealFraction*util.DayMillis
}
