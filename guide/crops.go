package guide

import (
	"sort"
	"strings"
)

// DefaultCropDuration is used when a crop is not in the lifecycle table.
const DefaultCropDuration = 90

// cropDurations maps crop identifiers to their expected lifecycle
// length in days. Mirrors the crop options the dashboard offers.
var cropDurations = map[string]int{
	"rice":      120,
	"wheat":     120,
	"corn":      90,
	"tomato":    80,
	"potato":    90,
	"cotton":    150,
	"sugarcane": 365,
	"beans":     60,
}

// CropDuration returns the lifecycle length in days for the crop,
// falling back to DefaultCropDuration for unknown identifiers.
func CropDuration(crop string) int {
	if d, ok := cropDurations[strings.ToLower(strings.TrimSpace(crop))]; ok {
		return d
	}
	return DefaultCropDuration
}

// KnownCrops lists the crops in the lifecycle table, sorted.
func KnownCrops() []string {
	crops := make([]string, 0, len(cropDurations))
	for c := range cropDurations {
		crops = append(crops, c)
	}
	sort.Strings(crops)
	return crops
}
