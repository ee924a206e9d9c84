// Command smoke probes a running timetable API instance and reports which
// endpoints respond as expected. It is a deployment check, not a test suite.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type probe struct {
	Method string
	Path   string
	Expect []int
	Token  bool
}

func main() {
	var (
		base    string
		token   string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", "", "Bearer token for authenticated probes (skipped when empty)")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes := []probe{
		{Method: http.MethodGet, Path: "/health", Expect: []int{http.StatusOK}},
		{Method: http.MethodGet, Path: "/ready", Expect: []int{http.StatusOK}},
		{Method: http.MethodGet, Path: "/metrics", Expect: []int{http.StatusOK}},
		{Method: http.MethodGet, Path: "/api/v1/slots", Expect: []int{http.StatusOK, http.StatusPreconditionFailed}, Token: true},
		{Method: http.MethodGet, Path: "/api/v1/proposals", Expect: []int{http.StatusOK}, Token: true},
	}

	client := &http.Client{Timeout: timeout}
	failures := 0

	for _, p := range probes {
		if p.Token && token == "" {
			fmt.Printf("SKIP %-6s %s (no token)\n", p.Method, p.Path)
			continue
		}
		status, err := run(client, base, token, p)
		if err != nil {
			failures++
			fmt.Printf("FAIL %-6s %s: %v\n", p.Method, p.Path, err)
			continue
		}
		if !contains(p.Expect, status) {
			failures++
			fmt.Printf("FAIL %-6s %s: got %d, want one of %v\n", p.Method, p.Path, status, p.Expect)
			continue
		}
		fmt.Printf("OK   %-6s %s (%d)\n", p.Method, p.Path, status)
	}

	if failures > 0 {
		log.Printf("%d probe(s) failed", failures)
		os.Exit(1)
	}
}

func run(client *http.Client, base, token string, p probe) (int, error) {
	req, err := http.NewRequest(p.Method, strings.TrimRight(base, "/")+p.Path, nil)
	if err != nil {
		return 0, err
	}
	if p.Token {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so connections can be reused; the body itself only matters for
	// envelope sanity on JSON endpoints.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return resp.StatusCode, fmt.Errorf("malformed JSON envelope: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func contains(values []int, v int) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
