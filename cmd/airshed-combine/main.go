// airshed-combine merges five-minute chunk CSVs into one daily file.
// Chunk files live under <data_dir>/5minute as <node>_<date>_*.csv;
// the combined file is written to <data_dir>/daily/<node>_<date>.csv
// with a single header.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/airshed/airshed/pkg/config"
	"github.com/airshed/airshed/pkg/timeutil"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	date := flag.String("date", "", "Date to combine (YYYY-MM-DD); default today")
	yesterday := flag.Bool("yesterday", false, "Combine chunks for yesterday")
	deleteChunks := flag.Bool("delete-chunks", false, "Delete chunk files after a successful combine")
	flag.Parse()

	filename, _ := filepath.Abs(*cfgFile)
	cfg, err := config.NewYAMLProvider(filename).LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loc := timeutil.LoadLocation(cfg.Node.Timezone)
	dateStr := determineDate(*date, *yesterday, loc)

	chunksDir := filepath.Join(cfg.Node.DataDir, "5minute")
	dailyDir := filepath.Join(cfg.Node.DataDir, "daily")
	if err := os.MkdirAll(dailyDir, 0o755); err != nil {
		fmt.Printf("Failed to create %s: %v\n", dailyDir, err)
		os.Exit(1)
	}

	pattern := fmt.Sprintf("%s_%s_*.csv", cfg.Node.NodeID, dateStr)
	chunks, err := filepath.Glob(filepath.Join(chunksDir, pattern))
	if err != nil || len(chunks) == 0 {
		fmt.Printf("No chunk files found for %s (pattern: %s)\n", dateStr, pattern)
		return
	}
	sort.Strings(chunks)

	dailyPath := filepath.Join(dailyDir, fmt.Sprintf("%s_%s.csv", cfg.Node.NodeID, dateStr))
	fmt.Printf("Combining %d files into %s\n", len(chunks), dailyPath)

	if err := combine(chunks, dailyPath); err != nil {
		fmt.Printf("Combine failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done writing daily file.")

	if *deleteChunks {
		fmt.Println("Deleting chunk files...")
		for _, chunk := range chunks {
			if err := os.Remove(chunk); err != nil {
				fmt.Printf("Failed to delete %s: %v\n", chunk, err)
				os.Exit(1)
			}
		}
		fmt.Println("Chunk files deleted.")
	}
}

func determineDate(date string, yesterday bool, loc *time.Location) string {
	if date != "" {
		return date
	}
	now := time.Now()
	if yesterday {
		now = now.AddDate(0, 0, -1)
	}
	return timeutil.LocalDate(now, loc)
}

// combine concatenates the chunk files, keeping only the first header
func combine(chunks []string, dailyPath string) error {
	out, err := os.Create(dailyPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	headerWritten := false

	for _, chunk := range chunks {
		if err := appendChunk(w, chunk, &headerWritten); err != nil {
			return fmt.Errorf("reading %s: %w", chunk, err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return out.Close()
}

func appendChunk(w *bufio.Writer, chunk string, headerWritten *bool) error {
	f, err := os.Open(chunk)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if *headerWritten {
				continue
			}
			*headerWritten = true
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
