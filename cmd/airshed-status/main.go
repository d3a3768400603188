// airshed-status prints a per-sensor connectivity report from the
// newest daily CSV: whether each sensor's columns exist, and whether
// the latest row carries values for them.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/airshed/airshed/internal/types"
	"github.com/airshed/airshed/pkg/config"
	"github.com/airshed/airshed/pkg/timeutil"
)

type sensorCheck struct {
	name      string
	valueCols []string
	statusCol string
}

var sensorChecks = []sensorCheck{
	{"PMS-1", []string{"pm1_atm_pms1", "pm25_atm_pms1", "pm10_atm_pms1"}, "pms1_status"},
	{"PMS-2", []string{"pm1_atm_pms2", "pm25_atm_pms2", "pm10_atm_pms2"}, "pms2_status"},
	{"BME688", []string{"temp_c", "rh_pct", "pressure_hpa"}, "bme_status"},
	{"SPEC SO2", []string{"so2_ppm"}, "so2_status"},
}

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	filename, _ := filepath.Abs(*cfgFile)
	cfg, err := config.NewYAMLProvider(filename).LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loc := timeutil.LoadLocation(cfg.Node.Timezone)
	dailyDir := filepath.Join(cfg.Node.DataDir, "daily")

	path, err := newestDailyFile(dailyDir, cfg.Node.NodeID, loc)
	if err != nil {
		fmt.Println("Sensor Status:")
		fmt.Printf("  %v\n", err)
		return
	}

	header, last, err := readHeaderAndLastRow(path)
	if err != nil {
		fmt.Printf("Failed to read %s: %v\n", path, err)
		os.Exit(1)
	}

	fmt.Printf("Sensor Status (file: %s)\n", filepath.Base(path))
	if len(header) == 0 {
		fmt.Println("  Daily file has no header/rows yet.")
		return
	}

	for _, sc := range sensorChecks {
		fmt.Printf("  %s: %s\n", sc.name, describe(sc, header, last))
	}
}

// newestDailyFile prefers today's file for the local date and falls
// back to the most recently modified matching file
func newestDailyFile(dailyDir, nodeID string, loc *time.Location) (string, error) {
	today := filepath.Join(dailyDir, fmt.Sprintf("%s_%s.csv", nodeID, timeutil.LocalDate(time.Now(), loc)))
	if _, err := os.Stat(today); err == nil {
		return today, nil
	}

	matches, err := filepath.Glob(filepath.Join(dailyDir, nodeID+"_*.csv"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no daily CSV found in %s", dailyDir)
	}
	sort.Slice(matches, func(i, j int) bool {
		si, _ := os.Stat(matches[i])
		sj, _ := os.Stat(matches[j])
		if si == nil || sj == nil {
			return matches[i] > matches[j]
		}
		return si.ModTime().After(sj.ModTime())
	})
	return matches[0], nil
}

func readHeaderAndLastRow(path string) (header []string, last map[string]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err = r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var lastRow []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(row) > 0 {
			lastRow = row
		}
	}

	last = map[string]string{}
	for i, col := range header {
		if i < len(lastRow) {
			last[col] = strings.TrimSpace(lastRow[i])
		}
	}
	return header, last, nil
}

func describe(sc sensorCheck, header []string, last map[string]string) string {
	headerSet := map[string]bool{}
	for _, h := range header {
		headerSet[h] = true
	}

	var missing []string
	for _, c := range sc.valueCols {
		if !headerSet[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Sprintf("Not connected (no columns: %s)", strings.Join(missing, ", "))
	}

	status := ""
	if headerSet[sc.statusCol] {
		status = last[sc.statusCol]
	}

	if anyValue(last, sc.valueCols) {
		if status != "" && status != "ok" {
			return fmt.Sprintf("Connected but status=%s", status)
		}
		return "Connected and recording"
	}
	if status != "" && status != types.NoData {
		return fmt.Sprintf("Connected but not recording (status=%s)", status)
	}
	return "Connected but not recording"
}

func anyValue(last map[string]string, cols []string) bool {
	for _, c := range cols {
		v := last[c]
		if v != "" && v != types.NoData {
			return true
		}
	}
	return false
}
