// Benchmark tool for testing CardPerk against labelled spend data.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/spends.csv -url http://localhost:8080
//
// This tool:
//   1. Reads spend data with expected reward labels
//   2. Sends each spend to CardPerk for evaluation
//   3. Compares CardPerk's reward (quantity, rate type) with expected labels
//   4. Calculates match rate, per-product breakdown, and throughput
//
// Expected CSV columns: product_id, amount, mcc, answers (JSON, optional),
// expected_quantity, expected_rate_type.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LabelledSpend represents a row from the benchmark dataset
type LabelledSpend struct {
	ProductID        string
	Amount           float64
	MCC              string
	Answers          map[string]any
	ExpectedQuantity float64
	ExpectedRateType string
}

// EvaluateRequest is the CardPerk API request format
type EvaluateRequest struct {
	ProductID string         `json:"productId"`
	Amount    float64        `json:"amount"`
	MCC       string         `json:"mcc,omitempty"`
	Answers   map[string]any `json:"answers,omitempty"`
}

// EvaluateResponse is the subset of the CardPerk API response we check
type EvaluateResponse struct {
	EvaluationID string `json:"evaluationId"`
	ProductID    string `json:"productId"`
	Reward       struct {
		Quantity   float64 `json:"quantity"`
		RateType   string  `json:"rateType"`
		Category   string  `json:"category"`
		RewardText string  `json:"rewardText"`
	} `json:"reward"`
}

// Metrics tracks benchmark results
type Metrics struct {
	QuantityMatches  int64 // Evaluated quantity equals the label
	RateTypeMatches  int64 // Evaluated rate type equals the label
	FullMatches      int64 // Both quantity and rate type match
	QuantityMismatch int64
	RateTypeMismatch int64

	TotalProcessed int64
	TotalErrors    int64

	ProcessingTimeMs int64

	mu         sync.Mutex
	perProduct map[string]*productStats
}

type productStats struct {
	Total   int64
	Matches int64
}

func (m *Metrics) recordProduct(productID string, match bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.perProduct[productID]
	if !ok {
		st = &productStats{}
		m.perProduct[productID] = st
	}
	st.Total++
	if match {
		st.Matches++
	}
}

func main() {
	// Parse flags
	csvPath := flag.String("csv", "", "Path to labelled spend CSV file")
	baseURL := flag.String("url", "http://localhost:8080", "CardPerk base URL")
	tenantID := flag.String("tenant", "benchmark-test", "Tenant ID for requests")
	limit := flag.Int("limit", 10000, "Maximum spends to process (0 = all)")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	product := flag.String("product", "", "Only test spends for this product ID")
	verbose := flag.Bool("verbose", false, "Print each spend result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/spends.csv [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║         CARDPERK BENCHMARK - Reward Evaluation Accuracy       ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nCSV File:     %s\n", *csvPath)
	fmt.Printf("CardPerk URL: %s\n", *baseURL)
	fmt.Printf("Tenant ID:    %s\n", *tenantID)
	fmt.Printf("Workers:      %d\n", *workers)
	fmt.Printf("Limit:        %d\n", *limit)
	if *product != "" {
		fmt.Printf("Product:      %s\n", *product)
	}
	fmt.Println()

	// Check CardPerk is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: CardPerk not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure CardPerk is running:")
		fmt.Println("  cd cardperk && go run cmd/cardperk/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ CardPerk is healthy")

	// Read labelled spends
	fmt.Printf("\nReading spend data from %s...\n", *csvPath)
	spends, err := readSpendCSV(*csvPath, *limit, *product)
	if err != nil {
		fmt.Printf("ERROR: Failed to read CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Loaded %d labelled spends\n", len(spends))

	// Run benchmark
	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(spends, *baseURL, *tenantID, *workers, *verbose)
	duration := time.Since(startTime)

	// Print results
	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func readSpendCSV(path string, limit int, product string) ([]LabelledSpend, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Map column indices
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, required := range []string{"product_id", "amount", "expected_quantity"} {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var spends []LabelledSpend

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip malformed rows
		}

		productID := record[colIndex["product_id"]]
		if product != "" && productID != product {
			continue
		}

		amount, _ := strconv.ParseFloat(record[colIndex["amount"]], 64)
		expectedQty, _ := strconv.ParseFloat(record[colIndex["expected_quantity"]], 64)

		spend := LabelledSpend{
			ProductID:        productID,
			Amount:           amount,
			ExpectedQuantity: expectedQty,
		}

		if idx, ok := colIndex["mcc"]; ok {
			spend.MCC = record[idx]
		}
		if idx, ok := colIndex["expected_rate_type"]; ok {
			spend.ExpectedRateType = record[idx]
		}
		if idx, ok := colIndex["answers"]; ok && record[idx] != "" {
			var answers map[string]any
			if err := json.Unmarshal([]byte(record[idx]), &answers); err == nil {
				spend.Answers = answers
			}
		}

		spends = append(spends, spend)

		if limit > 0 && len(spends) >= limit {
			break
		}
	}

	return spends, nil
}

func runBenchmark(spends []LabelledSpend, baseURL, tenantID string, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{perProduct: make(map[string]*productStats)}

	// Create work channel
	work := make(chan LabelledSpend, 100)
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for spend := range work {
				start := time.Now()
				result, err := evaluateSpend(client, baseURL, tenantID, spend)
				elapsed := time.Since(start).Milliseconds()

				atomic.AddInt64(&metrics.ProcessingTimeMs, elapsed)
				atomic.AddInt64(&metrics.TotalProcessed, 1)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s ₹%.2f -> %v\n", spend.ProductID, spend.Amount, err)
					}
					continue
				}

				qtyMatch := math.Abs(result.Reward.Quantity-spend.ExpectedQuantity) < 0.01
				rateMatch := spend.ExpectedRateType == "" || result.Reward.RateType == spend.ExpectedRateType

				if qtyMatch {
					atomic.AddInt64(&metrics.QuantityMatches, 1)
				} else {
					atomic.AddInt64(&metrics.QuantityMismatch, 1)
				}
				if rateMatch {
					atomic.AddInt64(&metrics.RateTypeMatches, 1)
				} else {
					atomic.AddInt64(&metrics.RateTypeMismatch, 1)
				}
				if qtyMatch && rateMatch {
					atomic.AddInt64(&metrics.FullMatches, 1)
				}
				metrics.recordProduct(spend.ProductID, qtyMatch && rateMatch)

				if verbose {
					status := "✓"
					if !qtyMatch || !rateMatch {
						status = "✗"
					}
					fmt.Printf("%s %-24s | Amount: ₹%12.2f | MCC: %-4s | Expected: %10.2f | Got: %10.2f (%s) | %s\n",
						status,
						spend.ProductID,
						spend.Amount,
						spend.MCC,
						spend.ExpectedQuantity,
						result.Reward.Quantity,
						result.Reward.RateType,
						result.Reward.RewardText,
					)
				}
			}
		}()
	}

	// Send work
	for _, spend := range spends {
		work <- spend
	}
	close(work)

	// Wait for completion
	wg.Wait()

	return metrics
}

func evaluateSpend(client *http.Client, baseURL, tenantID string, spend LabelledSpend) (*EvaluateResponse, error) {
	req := EvaluateRequest{
		ProductID: spend.ProductID,
		Amount:    spend.Amount,
		MCC:       spend.MCC,
		Answers:   spend.Answers,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-ID", tenantID)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result EvaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func printResults(m *Metrics, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      BENCHMARK RESULTS                        ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 DATASET STATISTICS\n")
	fmt.Printf("   Total Processed:  %d\n", m.TotalProcessed)
	fmt.Printf("   Errors:           %d\n", m.TotalErrors)

	evaluated := m.TotalProcessed - m.TotalErrors

	fmt.Printf("\n🎯 ACCURACY\n")
	if evaluated > 0 {
		fmt.Printf("   Full Matches:       %d / %d (%.2f%%)\n", m.FullMatches, evaluated, 100*float64(m.FullMatches)/float64(evaluated))
		fmt.Printf("   Quantity Matches:   %d / %d (%.2f%%)\n", m.QuantityMatches, evaluated, 100*float64(m.QuantityMatches)/float64(evaluated))
		fmt.Printf("   Rate Type Matches:  %d / %d (%.2f%%)\n", m.RateTypeMatches, evaluated, 100*float64(m.RateTypeMatches)/float64(evaluated))
	}
	if m.QuantityMismatch > 0 || m.RateTypeMismatch > 0 {
		fmt.Printf("   Quantity Mismatches:  %d ⚠️\n", m.QuantityMismatch)
		fmt.Printf("   Rate Type Mismatches: %d ⚠️\n", m.RateTypeMismatch)
	}

	fmt.Printf("\n💳 PER-PRODUCT BREAKDOWN\n")
	m.mu.Lock()
	products := make([]string, 0, len(m.perProduct))
	for id := range m.perProduct {
		products = append(products, id)
	}
	sort.Strings(products)
	for _, id := range products {
		st := m.perProduct[id]
		fmt.Printf("   %-24s %6d / %-6d (%.2f%%)\n", id, st.Matches, st.Total, 100*float64(st.Matches)/float64(st.Total))
	}
	m.mu.Unlock()

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if m.TotalProcessed > 0 {
		avgMs := float64(m.ProcessingTimeMs) / float64(m.TotalProcessed)
		sps := float64(m.TotalProcessed) / duration.Seconds()
		fmt.Printf("   Avg Latency:      %.2f ms\n", avgMs)
		fmt.Printf("   Throughput:       %.2f spends/sec\n", sps)
	}

	// Interpretation
	matchRate := float64(0)
	if evaluated > 0 {
		matchRate = float64(m.FullMatches) / float64(evaluated)
	}
	fmt.Printf("\n💡 INTERPRETATION\n")
	if matchRate >= 0.99 {
		fmt.Println("   ✅ Excellent - rewards match the labels")
	} else if matchRate >= 0.9 {
		fmt.Println("   ⚠️  Good - a few rewards diverge from the labels")
	} else {
		fmt.Println("   ❌ Poor - rewards diverge significantly, check rule changes")
	}

	fmt.Println()
}
