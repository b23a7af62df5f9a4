package models

import "time"

// Trigger is one named list of trigger words to watch for in entries.
type Trigger struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Words     []string  `json:"words"`
	CreatedAt time.Time `json:"created_at"`
}

// TriggerStats summarizes how a trigger's words correlate with emotions.
// Correlation maps an emotion label to the percentage-point difference
// between its share among matched entries and its share overall.
type TriggerStats struct {
	Count       int                `json:"count"`
	Correlation map[string]float64 `json:"correlation"`
}

// TriggerWithStats pairs a trigger with stats computed over recent entries.
type TriggerWithStats struct {
	Trigger
	Stats TriggerStats `json:"stats"`
}
