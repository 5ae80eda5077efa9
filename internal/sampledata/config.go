package sampledata

import "time"

// Config holds configuration for the generator.
type Config struct {
	Rows       int       // Number of data rows to write
	Day        time.Time // Calendar day of the generated events
	Traders    []string  // Trader names before decoration
	InPlay     float64   // Share of events scheduled for in-play
	Duplicates float64   // Share of rows that repeat an earlier event
	Noise      float64   // Share of rows outside the window or without an event
	Seed       int64     // Seed for reproducible output; 0 picks one from the clock
	OutputFile string    // Output CSV (default: trader_tagging_TIMESTAMP.csv)
	BaseURL    string    // When set, the file is posted to BaseURL/api/v1/report
	Timeout    time.Duration
}

// Stats summarises one generated file.
type Stats struct {
	Rows       int
	Events     int
	Duplicates int
	Noise      int
	InPlay     int
}

// Report mirrors the fields of the report API response that Run prints.
type Report struct {
	Source string `json:"source"`
	Stats  struct {
		RowsRead             int `json:"rows_read"`
		DroppedOutsideWindow int `json:"dropped_outside_window"`
		DroppedMissingEvent  int `json:"dropped_missing_event"`
		DroppedDuplicate     int `json:"dropped_duplicate"`
		Cleaned              int `json:"cleaned"`
	} `json:"stats"`
	Messages []string `json:"messages"`
}
