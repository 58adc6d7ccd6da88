package models

import "time"

// GuideState is the single long-lived guide document at store path "guide".
// Field names match the persisted tree exactly (the web client reads the
// same paths), so renames here are wire-breaking.
type GuideState struct {
	Active            bool                         `bson:"active"                      json:"active"`
	StartDate         string                       `bson:"startDate,omitempty"         json:"startDate,omitempty"` // calendar date, YYYY-MM-DD
	FarmerCrop        string                       `bson:"farmerCrop,omitempty"        json:"farmerCrop,omitempty"`
	CropDuration      int                          `bson:"cropDuration,omitempty"      json:"cropDuration,omitempty"` // expected lifecycle length in days
	DailyInstructions map[string]InstructionRecord `bson:"dailyInstructions,omitempty" json:"dailyInstructions,omitempty"`
}

// InstructionRecord is one day's generated guidance, keyed in the parent
// map by its day key (YYYY-MM-DD). Writing the same key again overwrites.
type InstructionRecord struct {
	Instructions string    `bson:"instructions" json:"instructions"`
	GeneratedAt  time.Time `bson:"generatedAt"  json:"generatedAt"`
}

// TodayRecord returns the record for the given day key, if present.
func (g *GuideState) TodayRecord(dayKey string) (InstructionRecord, bool) {
	rec, ok := g.DailyInstructions[dayKey]
	return rec, ok
}
