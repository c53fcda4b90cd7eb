package shopchatctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

// Run executes one shopchatctl command against a running API server and
// returns the process exit code.
func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("shopchatctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "API base URL")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 30*time.Second), "HTTP timeout (e.g. 30s)")
	search := fs.String("q", "", "search term for the products command")
	category := fs.String("cat", "", "category id filter for the products command")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	command := strings.TrimSpace(fs.Arg(0))
	method := http.MethodGet
	path := ""
	var body io.Reader
	switch command {
	case "health":
		path = "/v1/health"
	case "ready":
		path = "/v1/ready"
	case "products":
		path = "/v1/products"
		query := url.Values{}
		if *search != "" {
			query.Set("q", *search)
		}
		if *category != "" {
			query.Set("catId", *category)
		}
		if len(query) > 0 {
			path += "?" + query.Encode()
		}
	case "categories":
		path = "/v1/categories"
	case "ask":
		if fs.NArg() < 2 {
			_, _ = fmt.Fprintln(stderr, "ask requires a question argument")
			return 2
		}
		question := strings.Join(fs.Args()[1:], " ")
		payload, err := json.Marshal(map[string]any{
			"messages": []map[string]string{{"role": "user", "content": question}},
		})
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "encode request: %v\n", err)
			return 1
		}
		method = http.MethodPost
		path = "/v1/chat"
		body = bytes.NewReader(payload)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	endpoint := strings.TrimRight(*baseURL, "/") + path
	code, responseBody, err := doRequest(ctx, client, method, endpoint, body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	// The chat endpoint carries its message in the body even on error
	// statuses, so print it before reporting the failure.
	if command == "ask" {
		var reply struct {
			Response string `json:"response"`
		}
		if json.Unmarshal(responseBody, &reply) == nil && reply.Response != "" {
			_, _ = fmt.Fprintln(stdout, reply.Response)
			if code >= 400 {
				_, _ = fmt.Fprintf(stderr, "http %d\n", code)
				return 1
			}
			return 0
		}
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func doRequest(ctx context.Context, client *http.Client, method, url string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, responseBody, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: shopchatctl [flags] <command>")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health            GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready             GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  products          GET /v1/products (use -q and -cat to filter)")
	_, _ = fmt.Fprintln(w, "  categories        GET /v1/categories")
	_, _ = fmt.Fprintln(w, "  ask <question>    POST /v1/chat with the question")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
