package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Drives the place-order endpoint with concurrent single-unit orders.
// With a product seeded at stock N and requests K > N, exactly N orders
// should succeed and the rest be rejected for insufficient stock.
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	productID := flag.Int("product", 1, "product id to order")
	userID := flag.Int("user", 1, "user id placing orders")
	requests := flag.Int("n", 50, "total requests")
	expectStock := flag.Int("stock", 20, "seeded stock, used for the pass/fail check")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var successCount atomic.Int32
	var rejectedCount atomic.Int32
	var failedCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(map[string]interface{}{
				"request_id": uuid.NewString(),
				"user_id":    *userID,
				"product_id": *productID,
				"quantity":   1,
			})

			resp, err := client.Post(*baseURL+"/api/orders", "application/json", bytes.NewReader(body))
			if err != nil {
				failedCount.Add(1)
				return
			}
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusGone:
				rejectedCount.Add(1)
			default:
				failedCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	rejected := rejectedCount.Load()
	failed := failedCount.Load()

	fmt.Println("========== LOAD TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", *requests)
	fmt.Printf("Placed:           %d\n", success)
	fmt.Printf("Rejected:         %d\n", rejected)
	fmt.Printf("Failed:           %d\n", failed)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=======================================")

	if int(success) == *expectStock && failed == 0 {
		fmt.Printf("PASS: exactly %d orders placed, rest rejected\n", *expectStock)
	} else {
		fmt.Printf("FAIL: expected %d placed/0 failed, got %d/%d\n", *expectStock, success, failed)
	}
}
