package vizchatctl

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

// requestError marks failures after argument parsing succeeded; they exit 1,
// everything else exits 2.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

type runner struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	stdout  io.Writer
	stderr  io.Writer
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	r := &runner{stdout: stdout, stderr: stderr, client: defaults.HTTPClient}
	root := r.rootCommand(defaults)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		_, _ = fmt.Fprintln(stderr, reqErr.Error())
		return 1
	}
	_, _ = fmt.Fprintf(stderr, "%v\n\n", err)
	_, _ = fmt.Fprint(stderr, root.UsageString())
	return 2
}

func (r *runner) rootCommand(defaults Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "vizchatctl",
		Short:         "Command-line client for the vizchat API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errors.New("a command is required")
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if r.client == nil {
				r.client = &http.Client{Timeout: r.timeout}
			}
		},
	}
	root.PersistentFlags().StringVar(&r.baseURL, "base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8000"), "vizchat API base URL")
	root.PersistentFlags().StringVar(&r.apiKey, "api-key", defaults.APIKey, "API key for authenticated requests")
	root.PersistentFlags().DurationVar(&r.timeout, "timeout", durationOr(defaults.Timeout, 60*time.Second), "HTTP timeout (e.g. 30s)")

	root.AddCommand(
		r.getCommand("health", "GET /v1/health", "/v1/health"),
		r.getCommand("ready", "GET /v1/ready", "/v1/ready"),
		r.askCommand(),
	)
	return root
}

func (r *runner) getCommand(name, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := r.do(cmd.Context(), http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			r.printJSON(body)
			return nil
		},
	}
}

func (r *runner) askCommand() *cobra.Command {
	var csvPath, sheetName string
	var rawJSON bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "POST /v1/chat, optionally attaching a CSV file as the worksheet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := map[string]any{"message": strings.Join(args, " ")}
			if csvPath != "" {
				table, err := loadCSVTable(csvPath, sheetName)
				if err != nil {
					return &requestError{err: err}
				}
				request["tableau"] = table
			}
			payload, err := json.Marshal(request)
			if err != nil {
				return &requestError{err: err}
			}

			body, err := r.do(cmd.Context(), http.MethodPost, "/v1/chat", payload)
			if err != nil {
				return err
			}
			if rawJSON {
				r.printJSON(body)
				return nil
			}
			var resp struct {
				Response string `json:"response"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return &requestError{err: fmt.Errorf("decode chat response: %w", err)}
			}
			_, _ = fmt.Fprintln(r.stdout, resp.Response)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file sent as the worksheet data (first record is the header)")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "worksheet name (defaults to the CSV file name)")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "print the raw JSON response")
	return cmd
}

type csvTable struct {
	SheetName string     `json:"sheetName"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
}

func loadCSVTable(path, sheetName string) (csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return csvTable{}, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return csvTable{}, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return csvTable{}, fmt.Errorf("csv %s has no header record", path)
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	rows := records[1:]
	if rows == nil {
		rows = [][]string{}
	}
	return csvTable{SheetName: sheetName, Columns: records[0], Rows: rows}, nil
}

func (r *runner) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	endpoint := strings.TrimRight(r.baseURL, "/") + path
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &requestError{err: fmt.Errorf("request failed: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key := strings.TrimSpace(r.apiKey); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &requestError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &requestError{err: fmt.Errorf("request failed: %w", err)}
	}
	if resp.StatusCode >= 400 {
		return nil, &requestError{err: fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))}
	}
	return responseBody, nil
}

func (r *runner) printJSON(raw []byte) {
	if pretty, ok := prettyJSON(raw); ok {
		_, _ = fmt.Fprintln(r.stdout, pretty)
		return
	}
	if len(raw) > 0 {
		_, _ = fmt.Fprintln(r.stdout, string(raw))
	}
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
