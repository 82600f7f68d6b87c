package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"SU", CategorySU, true},
		{"13+", CategoryThirteenPlus, true},
		{"18+", CategoryEighteenPlus, true},
		{" 18+ ", CategoryEighteenPlus, true},
		{"THIRTEEN_PLUS", CategoryThirteenPlus, true},
		{"eighteen_plus", CategoryEighteenPlus, true},
		{"21+", "", false},
		{"", "", false},
		{"su", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBookFilters_HasCategory(t *testing.T) {
	assert.False(t, BookFilters{}.HasCategory())
	assert.False(t, BookFilters{Category: "all"}.HasCategory())
	assert.False(t, BookFilters{Category: "ALL"}.HasCategory())
	assert.True(t, BookFilters{Category: "SU"}.HasCategory())
}

func TestAsset(t *testing.T) {
	assert.True(t, Asset{}.IsZero())
	assert.False(t, AssetRef("covers/a.jpg").IsZero())
	assert.True(t, Asset{Upload: &FileUpload{Name: "a.pdf"}}.HasUpload())
}
