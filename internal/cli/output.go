// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-kvgateway.
//
// go-kvgateway is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintEntry prints a loaded key/value pair
func (p *Printer) PrintEntry(key, value string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"key":   key,
			"value": value,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, value)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// BenchResult summarizes a bench run.
type BenchResult struct {
	Count         int
	Concurrency   int
	StoreDuration time.Duration
	LoadDuration  time.Duration
}

// PrintBenchResult prints bench timings and throughput
func (p *Printer) PrintBenchResult(r *BenchResult) error {
	storeRate := rate(r.Count, r.StoreDuration)
	loadRate := rate(r.Count, r.LoadDuration)

	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"count":            r.Count,
			"concurrency":      r.Concurrency,
			"store_seconds":    r.StoreDuration.Seconds(),
			"load_seconds":     r.LoadDuration.Seconds(),
			"store_per_second": storeRate,
			"load_per_second":  loadRate,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Keys:        %d\n", r.Count)
		fmt.Fprintf(p.writer, "Concurrency: %d\n", r.Concurrency)
		fmt.Fprintf(p.writer, "Store:       %s (%.0f/s)\n", r.StoreDuration.Round(time.Millisecond), storeRate)
		fmt.Fprintf(p.writer, "Load:        %s (%.0f/s)\n", r.LoadDuration.Round(time.Millisecond), loadRate)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

func rate(n int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
