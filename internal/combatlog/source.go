package combatlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jensholdgaard/wowtools/internal/metrics"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrUpstream       = errors.New("log API request failed")
)

// Source fetches a report by its code.
type Source interface {
	Report(ctx context.Context, code string) (*Report, error)
}

// FixtureSource serves reports from disk. When Path is a directory the
// report is read from <Path>/<code>.json, otherwise Path is returned for
// every code.
type FixtureSource struct {
	Path string
}

func (f FixtureSource) Report(_ context.Context, code string) (*Report, error) {
	path := filepath.Clean(f.Path)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, filepath.Base(code)+".json")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("report %s: %w", code, ErrReportNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading report fixture: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report fixture: %w", err)
	}
	return &r, nil
}

// reportQuery selects the fields the usage table and the report header need.
const reportQuery = `query Report($code: String!, $end: Float!) {
  reportData {
    report(code: $code) {
      title
      startTime
      endTime
      owner { name }
      fights { name startTime endTime kill enemyNPCs { gameID } bossPercentage }
      guild { name }
      events(startTime: 0, endTime: $end, useAbilityIDs: true, dataType: Casts, limit: 10000) { data }
      masterData(translate: true) { gameVersion actors { id gameID name } }
      rankedCharacters { id classID name }
    }
  }
}`

// allEvents is an end time past any report, the API clamps it.
const allEvents = float64(1<<53 - 1)

// GraphQLSource queries the log analytics GraphQL API with a bearer token.
type GraphQLSource struct {
	client   *resty.Client
	endpoint string
}

// NewGraphQLSource creates a source for endpoint.
func NewGraphQLSource(endpoint, token string, timeout time.Duration) *GraphQLSource {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetAuthToken(token)
	client.SetHeader("Content-Type", "application/json")
	return &GraphQLSource{client: client, endpoint: endpoint}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		ReportData struct {
			Report *Report `json:"report"`
		} `json:"reportData"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (s *GraphQLSource) Report(ctx context.Context, code string) (*Report, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(graphQLRequest{
			Query:     reportQuery,
			Variables: map[string]any{"code": code, "end": allEvents},
		}).
		Post(s.endpoint)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APILogs, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode() != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APILogs, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}

	var out graphQLResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APILogs, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	if len(out.Errors) > 0 {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APILogs, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %s", ErrUpstream, out.Errors[0].Message)
	}
	if out.Data.ReportData.Report == nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APILogs, metrics.OutcomeNotFound).Inc()
		return nil, fmt.Errorf("report %s: %w", code, ErrReportNotFound)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APILogs, metrics.OutcomeOK).Inc()
	return out.Data.ReportData.Report, nil
}
