// Command datagen writes sample CSV files shaped like real spreadsheet
// exports, including the noise the normalizer has to absorb: mixed header
// spellings, formatted numbers, serial dates, and the occasional junk cell.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ignite/planner-ranker/internal/domain"
)

var subcategories = []string{"Finance", "Retail", "Travel", "Health", "Gaming"}
var tags = []string{"Paid", "Mandatory", "FOC"}

func main() {
	var (
		outDir = flag.String("out", "sample_data", "output directory")
		plans  = flag.Int("plans", 20, "number of plans to generate")
		seed   = flag.Int64("seed", 42, "random seed (fixed for reproducible files)")
		endStr = flag.String("end", "", "last history date (YYYY-MM-DD, default today)")
	)
	flag.Parse()

	end := time.Now().UTC().Truncate(24 * time.Hour)
	if *endStr != "" {
		parsed, err := time.Parse("2006-01-02", *endStr)
		if err != nil {
			log.Fatalf("invalid -end date: %v", err)
		}
		end = parsed
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	histPath := filepath.Join(*outDir, "historical_7day.csv")
	if err := writeHistory(histPath, rng, *plans, end); err != nil {
		log.Fatalf("writing history: %v", err)
	}

	planPath := filepath.Join(*outDir, "user_input.csv")
	if err := writePlans(planPath, rng, *plans); err != nil {
		log.Fatalf("writing plans: %v", err)
	}

	log.Printf("Wrote %s and %s", histPath, planPath)
}

func writeHistory(path string, rng *rand.Rand, plans int, end time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Deliberately messy header spellings
	if err := w.Write([]string{"Plan ID", "Publisher", "Date", "Revenue", "Distribution Count", "Clicks", "Subcategory"}); err != nil {
		return err
	}

	start := end.AddDate(0, 0, -(domain.HistoryWindowDays - 1))
	for p := 1; p <= plans; p++ {
		planID := fmt.Sprintf("Plan_%d", p)
		pub := domain.KnownPublishers[rng.Intn(len(domain.KnownPublishers))]
		sub := subcategories[p%len(subcategories)]

		for d := 0; d < domain.HistoryWindowDays; d++ {
			day := start.AddDate(0, 0, d)
			dist := 500 + rng.Intn(5000)
			clicks := int(float64(dist) * (0.01 + rng.Float64()*0.08))
			revenue := float64(clicks) * (0.5 + rng.Float64()*10)

			row := []string{
				planID,
				string(pub),
				day.Format("2006-01-02"),
				fmt.Sprintf("%.2f", revenue),
				strconv.Itoa(dist),
				strconv.Itoa(clicks),
				sub,
			}

			// Sprinkle in the noise real exports carry
			switch rng.Intn(20) {
			case 0:
				row[3] = "$" + row[3] // currency-formatted revenue
			case 1:
				row[4] = "" // blank distribution cell
			case 2:
				// spreadsheet serial date
				row[2] = strconv.Itoa(int(day.Sub(time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)).Hours() / 24))
			}

			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	// A malformed straggler with no identifier, as exports tend to include
	return w.Write([]string{"", "Publisher_1", end.Format("2006-01-02"), "100", "500", "10", "Finance"})
}

func writePlans(path string, rng *rand.Rand, plans int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"plan_id", "publisher", "tags", "budget_cap", "distribution_count", "clicks_to_be_delivered", "subcategory", "brand_name"}); err != nil {
		return err
	}

	for p := 1; p <= plans; p++ {
		tag := tags[rng.Intn(len(tags))]
		pub := domain.KnownPublishers[rng.Intn(len(domain.KnownPublishers))]

		var budget, dist, clicks string
		switch tag {
		case "Paid":
			budget = strconv.Itoa(500 + rng.Intn(5000))
		case "Mandatory":
			dist = strconv.Itoa(1000 + rng.Intn(10000))
		case "FOC":
			clicks = strconv.Itoa(50 + rng.Intn(500))
		}

		row := []string{
			fmt.Sprintf("Plan_%d", p),
			string(pub),
			tag,
			budget,
			dist,
			clicks,
			subcategories[p%len(subcategories)],
			fmt.Sprintf("Brand_%d", p),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}
