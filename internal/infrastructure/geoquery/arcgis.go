package geoquery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/prometheus"
	"github.com/landgauge/landgauge/pkg/errors"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "landgauge/1.0"
	maxResponseBytes = 8 << 20
)

// arcgisClient queries ArcGIS REST feature services over HTTP.
type arcgisClient struct {
	httpClient *http.Client
	logger     logging.Logger
	metrics    *prometheus.Metrics
	userAgent  string
}

// ClientOption configures the ArcGIS client.
type ClientOption func(*arcgisClient)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(a *arcgisClient) { a.httpClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(a *arcgisClient) { a.httpClient.Timeout = d }
}

// WithLogger sets the client logger.
func WithLogger(l logging.Logger) ClientOption {
	return func(a *arcgisClient) { a.logger = l }
}

// WithMetrics attaches request counters and latency histograms.
func WithMetrics(m *prometheus.Metrics) ClientOption {
	return func(a *arcgisClient) { a.metrics = m }
}

// NewArcGISClient creates the HTTP-backed spatial query service.
func NewArcGISClient(opts ...ClientOption) Service {
	c := &arcgisClient{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NewNopLogger(),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// arcgisError is the error envelope ArcGIS embeds in a 200 response.
type arcgisError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type arcgisFeature struct {
	Attributes Record `json:"attributes"`
}

type arcgisResponse struct {
	Features []arcgisFeature `json:"features"`
	Error    *arcgisError    `json:"error,omitempty"`
}

func (c *arcgisClient) QueryPoint(ctx context.Context, q Query) ([]Record, error) {
	geometry, err := json.Marshal(map[string]any{
		"x":                q.Point.Lon,
		"y":                q.Point.Lat,
		"spatialReference": map[string]int{"wkid": 4326},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "encode point geometry")
	}

	outFields := q.OutFields
	if outFields == "" {
		outFields = "*"
	}
	params := url.Values{
		"geometry":       {string(geometry)},
		"geometryType":   {"esriGeometryPoint"},
		"spatialRel":     {"esriSpatialRelIntersects"},
		"outFields":      {outFields},
		"returnGeometry": {"false"},
		"f":              {"json"},
	}
	endpoint := fmt.Sprintf("%s/%s/query?%s", q.BaseURL, q.Layer, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build spatial query request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.GeoQueryDuration.WithLabelValues(q.Layer).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.observe(q.Layer, "error")
		return nil, errors.Wrap(err, errors.CodeUpstreamUnavailable, "spatial service unreachable").WithDetail(q.Layer)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe(q.Layer, fmt.Sprintf("http_%d", resp.StatusCode))
		return nil, errors.New(errors.CodeUpstreamRejected, "spatial service returned error status").
			WithDetail(fmt.Sprintf("%s: HTTP %d", q.Layer, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.observe(q.Layer, "error")
		return nil, errors.Wrap(err, errors.CodeUpstreamUnavailable, "read spatial response").WithDetail(q.Layer)
	}

	var parsed arcgisResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.observe(q.Layer, "parse_error")
		return nil, errors.Wrap(err, errors.CodeLayerParseError, "decode spatial response").WithDetail(q.Layer)
	}
	if parsed.Error != nil {
		c.observe(q.Layer, "rejected")
		return nil, errors.New(errors.CodeUpstreamRejected, "spatial service rejected query").
			WithDetail(fmt.Sprintf("%s: %d %s", q.Layer, parsed.Error.Code, parsed.Error.Message))
	}

	c.observe(q.Layer, "ok")

	records := make([]Record, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		if f.Attributes != nil {
			records = append(records, f.Attributes)
		}
	}

	c.logger.Debug("spatial query completed",
		logging.String("layer", q.Layer),
		logging.Int("features", len(records)),
		logging.Duration("elapsed", time.Since(start)))

	return records, nil
}

func (c *arcgisClient) observe(layer, status string) {
	if c.metrics != nil {
		c.metrics.GeoQueryRequests.WithLabelValues(layer, status).Inc()
	}
}
