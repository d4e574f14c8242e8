// Package obs talks to the public OBS endpoints: the department directory
// (JSON) and the per-department course table (an HTML fragment).
package obs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/selimk/obs-catalog-api/internal/models"
	"github.com/selimk/obs-catalog-api/pkg/config"
)

const (
	departmentsPath = "/public/DersProgram/SearchBransKoduByProgramSeviye"
	coursesPath     = "/public/DersProgram/DersProgramSearch"
)

// Client fetches catalog data from OBS. Both calls carry their own timeout
// and pass through a shared rate limiter so bursts of cache misses do not
// hammer the upstream.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *zap.Logger
	baseURL      string
	programLevel string
	deptTimeout  time.Duration
	tableTimeout time.Duration
}

// NewClient constructs an OBS client from configuration.
func NewClient(cfg config.OBSConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 4
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 4
	}
	deptTimeout := cfg.DepartmentsTimeout
	if deptTimeout <= 0 {
		deptTimeout = 10 * time.Second
	}
	tableTimeout := cfg.CoursesTimeout
	if tableTimeout <= 0 {
		tableTimeout = 15 * time.Second
	}
	level := cfg.ProgramLevel
	if level == "" {
		level = "LS"
	}
	return &Client{
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		logger:       logger,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		programLevel: level,
		deptTimeout:  deptTimeout,
		tableTimeout: tableTimeout,
	}
}

type departmentRecord struct {
	Code string `json:"dersBransKodu"`
	ID   int    `json:"bransKoduId"`
}

// FetchDepartments retrieves the department directory. Records missing a
// code or carrying a non-positive id fail the whole call; downstream code
// never sees a malformed department.
func (c *Client) FetchDepartments(ctx context.Context) ([]models.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deptTimeout)
	defer cancel()

	body, err := c.get(ctx, departmentsPath, url.Values{
		"programSeviyeTipiAnahtari": {c.programLevel},
	})
	if err != nil {
		return nil, err
	}

	var records []departmentRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode departments: %w", err)
	}

	departments := make([]models.Department, 0, len(records))
	for _, rec := range records {
		if rec.Code == "" || rec.ID <= 0 {
			return nil, fmt.Errorf("malformed department record: code=%q id=%d", rec.Code, rec.ID)
		}
		departments = append(departments, models.Department{Code: rec.Code, ID: rec.ID})
	}

	return departments, nil
}

// FetchDepartmentTable retrieves one department's course table and returns
// it as rows of trimmed cell texts, ready for the schedule parser.
func (c *Client) FetchDepartmentTable(ctx context.Context, deptID int) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.tableTimeout)
	defer cancel()

	body, err := c.get(ctx, coursesPath, url.Values{
		"programSeviyeTipiAnahtari": {c.programLevel},
		"dersBransKoduId":           {fmt.Sprintf("%d", deptID)},
	})
	if err != nil {
		return nil, err
	}

	rows := extractTableRows(body)
	if rows == nil {
		c.logger.Warn("no table found in OBS response", zap.Int("dept_id", deptID))
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("obs returned status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// extractTableRows walks the first <table> in the document and collects the
// text of each <td> per <tr>. Returns nil when no table is present.
func extractTableRows(body []byte) [][]string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}

	table := findFirst(doc, "table")
	if table == nil {
		return nil
	}

	var rows [][]string
	var walkRows func(n *html.Node)
	walkRows = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for cell := n.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && cell.Data == "td" {
					cells = append(cells, strings.TrimSpace(nodeText(cell)))
				}
			}
			if cells != nil {
				rows = append(rows, cells)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walkRows(child)
		}
	}
	walkRows(table)

	return rows
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
