package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"dinnerboard/internal/config"
)

// remind is the cron client: a system scheduler runs it around the reminder
// hour and it triggers the server's reminder dispatch endpoint.

func main() {
	var (
		serverURL = flag.String("server", "", "Server base URL (default: APP_BASE_URL)")
		secret    = flag.String("secret", "", "Cron secret (default: CRON_SECRET)")
		timeout   = flag.Duration("timeout", 30*time.Second, "Request timeout")
	)
	flag.Usage = printUsage
	flag.Parse()

	cfg := config.Load()
	if *serverURL == "" {
		*serverURL = cfg.AppBaseURL
	}
	if *secret == "" {
		*secret = cfg.CronSecret
	}
	if *secret == "" {
		log.Fatal("No cron secret configured: set CRON_SECRET or pass -secret")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := trigger(ctx, *serverURL, *secret)
	if err != nil {
		log.Fatalf("Reminder trigger failed: %v", err)
	}

	log.Printf("Reminder dispatched: day=%s sent=%d custom=%d", result.Day, result.Sent, result.CustomExecuted)
	if result.Message != "" {
		log.Println(result.Message)
	}
}

type dispatchResult struct {
	Day            string `json:"day"`
	Sent           int    `json:"sent"`
	CustomExecuted int    `json:"customExecuted"`
	Message        string `json:"message"`
}

func trigger(ctx context.Context, serverURL, secret string) (*dispatchResult, error) {
	url := strings.TrimRight(serverURL, "/") + "/bot/reminder"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+secret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, body)
	}

	var result dispatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

func printUsage() {
	fmt.Println("DinnerBoard Reminder Trigger")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  remind [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -server <url>       Server base URL (default: APP_BASE_URL)")
	fmt.Println("  -secret <secret>    Cron secret (default: CRON_SECRET)")
	fmt.Println("  -timeout <dur>      Request timeout (default: 30s)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Trigger reminders against the configured server")
	fmt.Println("  remind")
	fmt.Println()
	fmt.Println("  # Trigger against an explicit server")
	fmt.Println("  remind -server https://dinnerboard.example.com")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  APP_BASE_URL    Server base URL (default: http://localhost:8080)")
	fmt.Println("  CRON_SECRET     Bearer secret shared with the server")
}
