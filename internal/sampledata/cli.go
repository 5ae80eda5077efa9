package sampledata

import "os"

// ShowHelp prints usage information for the generator.
func ShowHelp() {
	os.Stdout.WriteString(`Trader Tagging Generator
========================

Writes a synthetic trader tagging CSV export and optionally posts it to a
running heatmap server.

Usage:
  go run ./cmd/gen-tagging [options]

Options:
  -rows int
        Number of data rows (default 400)
  -day string
        Day of the events, YYYY-MM-DD (default today)
  -traders string
        Comma separated trader names (default built-in list)
  -in-play float
        Share of events scheduled for in-play (default 0.6)
  -duplicates float
        Share of rows repeating an earlier event (default 0.1)
  -noise float
        Share of rows outside 07:00-22:29 or without an event (default 0.1)
  -seed int
        Seed for reproducible output (default: random)
  -output string
        Output file (default: trader_tagging_TIMESTAMP.csv)
  -url string
        Base URL of the heatmap server; the file is uploaded when set
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  go run ./cmd/gen-tagging -rows 1000 -output ~/Downloads/trader_tagging_demo.csv
  go run ./cmd/gen-tagging -seed 42 -url http://localhost:9080
`)
}
