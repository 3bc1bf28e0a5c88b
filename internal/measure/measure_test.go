package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDimensions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{"meters and millimeters", "The room is 2.0m high and 2500mm deep", []float64{2.0, 2.5}},
		{"comma decimal", "height 2,5 m", []float64{2.5}},
		{"long unit names", "3 meters by 1200 millimeters and 1 meter", []float64{3, 1.2, 1}},
		{"british spelling", "ceiling 2.2 metres, 1 metre and 900 millimetres", []float64{2.2, 1, 0.9}},
		{"unit directly after number", "ceiling 2.2metre", []float64{2.2}},
		{"trailing full stop", "ceiling 2.2 m.", []float64{2.2}},
		{"duplicates kept", "2.4m, 2.4m", []float64{2.4, 2.4}},
		{"area units are not lengths", "floor 12 m2 total", []float64{}},
		{"units are case sensitive", "2.4M high", []float64{}},
		{"no range filtering", "scale 1 m and 9000 m", []float64{1, 9000}},
		{"empty", "", []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDimensions(tt.text))
		})
	}
}

func TestExtractAreas(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{"sq m", "bedroom 6.5 sq m", []float64{6.5}},
		{"sq.m", "bedroom 9 sq.m", []float64{9}},
		{"square meters", "12 square meters and 1 square meter", []float64{12, 1}},
		{"m2 and m²", "4 m2 then 15m²", []float64{4, 15}},
		{"order kept", "20 m2, 5 sq m, 20 m2", []float64{20, 5, 20}},
		{"none", "no areas here", []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAreas(tt.text))
		})
	}
}

func TestExtractFloorCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"hyphen storey", "a 5-storey building", []int{5}},
		{"space storeys", "3 storeys high", []int{3}},
		{"american spelling", "2-story house, 6 stories", []int{2, 6}},
		{"none", "single level", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFloorCount(tt.text))
		})
	}
}

func TestExtract_TagsKinds(t *testing.T) {
	got := Extract("2.2m ceilings, 5 sq m store, 3-storey block")

	assert.Equal(t, []Measurement{
		{Kind: KindHeight, Value: 2.2},
		{Kind: KindArea, Value: 5},
		{Kind: KindStoreyCount, Value: 3},
	}, got)
}
