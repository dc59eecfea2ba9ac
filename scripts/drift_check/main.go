// Command drift_check compares roster-wide daily attendance between the
// new engine and the legacy service over a span of dates. It is used
// while both systems run side by side: any per-employee status or hours
// drift is a migration regression and fails the run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// hoursTolerance absorbs rounding differences between the two engines'
// float formatting.
const hoursTolerance = 0.01

type dailyRow struct {
	EmployeeID    string  `json:"employee_id"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	DurationHours float64 `json:"duration_hours"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
}

type envelope struct {
	Data []dailyRow `json:"data"`
}

type drift struct {
	Date       string
	EmployeeID string
	Field      string
	Engine     string
	Legacy     string
}

func main() {
	var (
		engineBase string
		legacyBase string
		fromStr    string
		toStr      string
		timeout    time.Duration
	)

	flag.StringVar(&engineBase, "engine-base", "http://localhost:8080/api/v1", "engine API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000/api/v1", "legacy API base URL")
	flag.StringVar(&fromStr, "from", "", "first date to compare (YYYY-MM-DD)")
	flag.StringVar(&toStr, "to", "", "last date to compare (YYYY-MM-DD), defaults to from")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout")
	flag.Parse()

	from, err := time.Parse(dateLayout, fromStr)
	if err != nil {
		log.Fatalf("invalid -from: %v", err)
	}
	to := from
	if toStr != "" {
		if to, err = time.Parse(dateLayout, toStr); err != nil {
			log.Fatalf("invalid -to: %v", err)
		}
	}
	if to.Before(from) {
		log.Fatal("-to must not be before -from")
	}

	client := &http.Client{Timeout: timeout}
	var drifts []drift
	dates := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		engineRows, err := fetchDaily(client, engineBase, date)
		if err != nil {
			log.Fatalf("engine fetch %s: %v", date, err)
		}
		legacyRows, err := fetchDaily(client, legacyBase, date)
		if err != nil {
			log.Fatalf("legacy fetch %s: %v", date, err)
		}
		drifts = append(drifts, compareDate(date, engineRows, legacyRows)...)
		dates++
	}

	printReport(dates, drifts)
	if len(drifts) > 0 {
		os.Exit(1)
	}
}

func fetchDaily(client *http.Client, base, date string) (map[string]dailyRow, error) {
	url := fmt.Sprintf("%s/attendance/daily?date=%s", base, date)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	rows := make(map[string]dailyRow, len(env.Data))
	for _, row := range env.Data {
		rows[row.EmployeeID] = row
	}
	return rows, nil
}

func compareDate(date string, engine, legacy map[string]dailyRow) []drift {
	var out []drift
	ids := make([]string, 0, len(engine))
	for id := range engine {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		e := engine[id]
		l, ok := legacy[id]
		if !ok {
			out = append(out, drift{date, id, "presence", e.Status, "missing"})
			continue
		}
		if e.Status != l.Status {
			out = append(out, drift{date, id, "status", e.Status, l.Status})
		}
		out = append(out, compareHours(date, id, "duration_hours", e.DurationHours, l.DurationHours)...)
		out = append(out, compareHours(date, id, "regular_hours", e.RegularHours, l.RegularHours)...)
		out = append(out, compareHours(date, id, "overtime_hours", e.OvertimeHours, l.OvertimeHours)...)
	}
	for id, l := range legacy {
		if _, ok := engine[id]; !ok {
			out = append(out, drift{date, id, "presence", "missing", l.Status})
		}
	}
	return out
}

func compareHours(date, id, field string, e, l float64) []drift {
	if math.Abs(e-l) <= hoursTolerance {
		return nil
	}
	return []drift{{date, id, field, fmt.Sprintf("%.2f", e), fmt.Sprintf("%.2f", l)}}
}

func printReport(dates int, drifts []drift) {
	fmt.Println("Attendance Drift Report")
	fmt.Println("=======================")
	fmt.Printf("Dates compared: %d\n", dates)
	if len(drifts) == 0 {
		fmt.Println("No drift.")
		return
	}
	for _, d := range drifts {
		fmt.Printf("[DRIFT] %s %s %s: engine=%s legacy=%s\n", d.Date, d.EmployeeID, d.Field, d.Engine, d.Legacy)
	}
	fmt.Printf("Total drifts: %d\n", len(drifts))
}
