package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/chatvolt/chatvolt-mcp/internal/chatvolt"
	"github.com/chatvolt/chatvolt-mcp/internal/config"
	"github.com/chatvolt/chatvolt-mcp/internal/docs"
	"github.com/chatvolt/chatvolt-mcp/internal/tool"
	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "health":
		cmdHealth()
	case "tools":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: chatvoltctl tools <list|show>")
			os.Exit(1)
		}
		switch os.Args[2] {
		case "list":
			cmdToolsList()
		case "show":
			if len(os.Args) < 4 {
				fmt.Fprintln(os.Stderr, "usage: chatvoltctl tools show <name>")
				os.Exit(1)
			}
			cmdToolsShow(os.Args[3])
		default:
			fmt.Fprintf(os.Stderr, "unknown tools subcommand: %s\n", os.Args[2])
			os.Exit(1)
		}
	case "call":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: chatvoltctl call <name> [json-args]")
			os.Exit(1)
		}
		cmdCall(os.Args[2], optArg(os.Args, 3))
	case "calls":
		cmdCalls(os.Args[2:])
	case "logs":
		cmdLogs(os.Args[2:])
	case "config":
		if len(os.Args) < 4 || os.Args[2] != "validate" {
			fmt.Fprintln(os.Stderr, "usage: chatvoltctl config validate <path>")
			os.Exit(1)
		}
		cmdConfigValidate(os.Args[3])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// --- run command: dispatch locally without a daemon ---

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	envFile := fs.String("env-file", ".env", "Environment file with CHATVOLT_* settings")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: chatvoltctl run [flags] <name> [json-args]")
		os.Exit(1)
	}
	name := fs.Arg(0)
	callArgs, err := parseArgs(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv(*envFile)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	client := chatvolt.New(cfg.Chatvolt.APIKey,
		chatvolt.WithBaseURL(cfg.Chatvolt.BaseURL),
		chatvolt.WithTimeout(cfg.Chatvolt.Timeout()),
		chatvolt.WithLogger(logger),
	)
	fetcher, err := docs.New(cfg.Docs.BaseURL, docs.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	reg, err := tool.NewRegistry(tool.Filter(tool.Operations(client, fetcher), cfg.Tools), tool.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printResult(reg.Call(context.Background(), name, callArgs))
}

// --- API client commands ---

func cmdHealth() {
	body, err := apiGet("/api/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(body))
}

func cmdToolsList() {
	body, err := apiGet("/api/operations")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	var ops []protocol.OperationDescriptor
	json.Unmarshal(body, &ops)
	for _, op := range ops {
		fmt.Printf("%-36s %s\n", op.Name, firstLine(op.Description))
	}
}

func cmdToolsShow(name string) {
	body, err := apiGet("/api/operations/" + url.PathEscape(name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(prettyJSON(body))
}

func cmdCall(name, rawArgs string) {
	callArgs, err := parseArgs(rawArgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	payload, _ := json.Marshal(callArgs)

	// Error envelopes come back with a 4xx/5xx status; print them the same way.
	body, _, err := apiDo("POST", "/api/operations/"+url.PathEscape(name)+"/call", payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	var res protocol.CallResult
	if err := json.Unmarshal(body, &res); err != nil || len(res.Content) == 0 {
		fmt.Fprintf(os.Stderr, "error: %s\n", string(body))
		os.Exit(1)
	}
	printResult(res)
}

func cmdCalls(args []string) {
	fs := flag.NewFlagSet("calls", flag.ExitOnError)
	operation := fs.String("operation", "", "Filter by operation name")
	status := fs.String("status", "", "Filter by status (ok|error)")
	kind := fs.String("kind", "", "Filter by error kind")
	limit := fs.Int("limit", 50, "Max results")
	fs.Parse(args)

	q := url.Values{}
	q.Set("limit", strconv.Itoa(*limit))
	setIf(q, "operation", *operation)
	setIf(q, "status", *status)
	setIf(q, "kind", *kind)

	body, err := apiGet("/api/calls?" + q.Encode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	var resp struct {
		Total int                  `json:"total"`
		Calls []protocol.CallEntry `json:"calls"`
	}
	json.Unmarshal(body, &resp)
	for _, c := range resp.Calls {
		fmt.Printf("%s %-36s %-5s %6dms %s\n",
			c.StartedAt.Local().Format(time.DateTime), c.Operation, c.Status, c.DurationMS, c.Error)
	}
	fmt.Printf("%d of %d calls\n", len(resp.Calls), resp.Total)
}

func cmdLogs(args []string) {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	level := fs.String("level", "info", "Minimum level (debug|info|warn|error)")
	component := fs.String("component", "", "Filter by component")
	operation := fs.String("operation", "", "Filter by operation")
	limit := fs.Int("limit", 100, "Max results")
	fs.Parse(args)

	q := url.Values{}
	q.Set("level", *level)
	q.Set("limit", strconv.Itoa(*limit))
	setIf(q, "component", *component)
	setIf(q, "operation", *operation)

	body, err := apiGet("/api/logs?" + q.Encode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	var entries []struct {
		Time      time.Time      `json:"time"`
		Level     string         `json:"level"`
		Component string         `json:"component"`
		Message   string         `json:"message"`
		Attrs     map[string]any `json:"attrs"`
	}
	json.Unmarshal(body, &entries)
	for _, e := range entries {
		attrs, _ := json.Marshal(e.Attrs)
		fmt.Printf("%s %-5s %-10s %s %s\n", e.Time.Local().Format(time.TimeOnly), e.Level, e.Component, e.Message, attrs)
	}
}

func cmdConfigValidate(path string) {
	_, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("config is valid")
}

// --- Helpers ---

func apiGet(path string) ([]byte, error) {
	body, status, err := apiDo("GET", path, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", status, string(body))
	}
	return body, nil
}

func apiDo(method, path string, payload []byte) ([]byte, int, error) {
	base := envOr("CHATVOLT_ADMIN_URL", "http://localhost:8080")

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, base+path, reqBody)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key := os.Getenv("CHATVOLT_ADMIN_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, resp.StatusCode, fmt.Errorf("HTTP 401: check CHATVOLT_ADMIN_API_KEY")
	}
	return body, resp.StatusCode, nil
}

func parseArgs(raw string) (map[string]any, error) {
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}
	if raw == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		raw = string(b)
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

func printResult(res protocol.CallResult) {
	if res.IsError {
		fmt.Fprintf(os.Stderr, "error: %s\n", res.Text())
		os.Exit(1)
	}
	fmt.Println(res.Text())
}

func prettyJSON(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	return string(out)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func optArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printUsage() {
	fmt.Println("chatvoltctl - chatvolt-mcp management CLI")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run <name> [json]      Dispatch an operation locally against Chatvolt")
	fmt.Println("  health                 Check server health")
	fmt.Println("  tools list             List advertised operations")
	fmt.Println("  tools show <name>      Show an operation and its input schema")
	fmt.Println("  call <name> [json]     Dispatch an operation through the server (json may be -)")
	fmt.Println("  calls                  List journaled calls (--operation, --status, --kind, --limit)")
	fmt.Println("  logs                   Show recent server logs (--level, --component, --operation)")
	fmt.Println("  config validate <p>    Validate config file")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  CHATVOLT_ADMIN_URL      Admin API URL (default: http://localhost:8080)")
	fmt.Println("  CHATVOLT_ADMIN_API_KEY  Admin API key")
	fmt.Println("  CHATVOLT_API_KEY        Chatvolt API key, used by run")
}
