// Package analysis orchestrates a full property analysis: zoning resolution,
// development controls, overlay collection, and development potential, fused
// into a single report.
package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/landgauge/landgauge/internal/domain/planning"
	"github.com/landgauge/landgauge/internal/infrastructure/messaging/kafka"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/prometheus"
	"github.com/landgauge/landgauge/pkg/errors"
	"github.com/landgauge/landgauge/pkg/types/common"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

const (
	liveDataConfidence     = 0.85
	fallbackDataConfidence = 0.6

	briefHeritageRadiusM = 50
)

// ResolverRegistry yields the jurisdiction resolver for a state.
type ResolverRegistry interface {
	Resolve(state planning.State) planning.JurisdictionResolver
	HasLiveData(state planning.State) bool
}

// Request describes one property to analyze.
type Request struct {
	Point   geo.Coordinates
	State   planning.State
	Address string
	LotPlan string
	// LotAreaSqm enables GFA, subdivision, and scenario computation when set.
	LotAreaSqm *float64
	// IncludeScenarios toggles development potential computation; when false
	// the report carries an empty potential block.
	IncludeScenarios bool
	// HeritageRadiusM overrides the heritage search radius; zero means
	// the default.
	HeritageRadiusM int
}

// Service runs property analyses.
type Service struct {
	registry  ResolverRegistry
	potential *planning.PotentialEngine
	publisher kafka.Publisher
	metrics   *prometheus.Metrics
	logger    logging.Logger
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithPublisher emits an event after each completed analysis.
func WithPublisher(p kafka.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics records analysis counters and latency.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the orchestrator.
func NewService(registry ResolverRegistry, log logging.Logger, opts ...Option) *Service {
	s := &Service{
		registry:  registry,
		potential: planning.NewPotentialEngine(planning.WithPotentialLogger(log)),
		publisher: kafka.NopPublisher{},
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze produces the complete analysis for a point.  Overlay and control
// resolution run concurrently once the zone is known; upstream degradation
// inside a resolver surfaces as defaults, not as an error here.
func (s *Service) Analyze(ctx context.Context, req Request) (*planning.PropertyAnalysis, error) {
	start := s.now()

	if err := s.validate(req); err != nil {
		s.observe(req.State, "invalid", start)
		return nil, err
	}

	resolver := s.registry.Resolve(req.State)

	// A zoning layer outage is not fatal: the no-data record stands in and
	// the report carries a lowered confidence and an extra limitation.
	zoning, zoningErr := resolver.ResolveZoning(ctx, req.Point)
	if zoningErr != nil {
		s.logger.Warn("zoning layer unavailable, using fallback record", logging.Err(zoningErr))
		zoning = planning.UnknownZoning(req.State, "")
	}

	var (
		controls *planning.ControlsSet
		overlays *planning.OverlaySummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		controls, err = resolver.ResolveControls(gctx, req.Point, zoning.ZoneCode, req.LotAreaSqm)
		return err
	})
	g.Go(func() error {
		var err error
		overlays, err = resolver.ResolveOverlays(gctx, planning.OverlayQuery{
			Point:           req.Point,
			HeritageRadiusM: req.HeritageRadiusM,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		s.observe(req.State, "error", start)
		return nil, errors.Wrap(err, errors.CodeAnalysisFailed, "resolve planning layers")
	}

	potential := planning.EmptyPotential()
	if req.IncludeScenarios {
		potential = s.potential.Compute(*zoning, *controls, *overlays, req.LotAreaSqm)
	}

	address := req.Address
	if address == "" {
		address = fmt.Sprintf("%v, %v", req.Point.Lat, req.Point.Lon)
	}

	confidence := s.confidence(req.State)
	limitations := s.limitations(req.State)
	if zoningErr != nil {
		confidence = fallbackDataConfidence
		limitations = append(limitations,
			"Zoning data could not be retrieved - verify zoning with local council")
	}

	result := &planning.PropertyAnalysis{
		Location: planning.PropertyLocation{
			Address:    address,
			Point:      req.Point,
			State:      req.State,
			LGAName:    zoning.LGAName,
			LotPlan:    req.LotPlan,
			LotAreaSqm: req.LotAreaSqm,
		},
		Zoning:               *zoning,
		DevelopmentControls:  *controls,
		Overlays:             *overlays,
		DevelopmentPotential: potential,
		AnalysisDate:         s.now(),
		DataSources:          s.dataSources(req.State),
		ConfidenceScore:      confidence,
		Limitations:          limitations,
	}

	s.observe(req.State, "ok", start)
	s.publish(ctx, result, s.now().Sub(start))

	s.logger.Info("property analysis completed",
		logging.String("state", string(req.State)),
		logging.String("zone_code", zoning.ZoneCode),
		logging.Int("overlays", overlays.TotalOverlays),
		logging.Duration("elapsed", s.now().Sub(start)))
	return result, nil
}

// AnalyzeBrief produces the condensed report for quick lookups.  Heritage is
// searched with a tighter radius than the full analysis.
func (s *Service) AnalyzeBrief(ctx context.Context, point geo.Coordinates, state planning.State) (*planning.BriefAnalysis, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}
	if _, err := planning.ParseState(string(state)); err != nil {
		return nil, err
	}

	resolver := s.registry.Resolve(state)

	zoning, err := resolver.ResolveZoning(ctx, point)
	if err != nil {
		s.logger.Warn("zoning layer unavailable, using fallback record", logging.Err(err))
		zoning = planning.UnknownZoning(state, "")
	}

	var (
		controls *planning.ControlsSet
		overlays *planning.OverlaySummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		controls, err = resolver.ResolveControls(gctx, point, zoning.ZoneCode, nil)
		return err
	})
	g.Go(func() error {
		var err error
		overlays, err = resolver.ResolveOverlays(gctx, planning.OverlayQuery{
			Point:           point,
			HeritageRadiusM: briefHeritageRadiusM,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeAnalysisFailed, "resolve planning layers")
	}

	brief := &planning.BriefAnalysis{
		Location:     point,
		ZoneCode:     zoning.ZoneCode,
		ZoneName:     zoning.ZoneName,
		ZoneCategory: zoning.ZoneCategory,
		HazardCount:  len(overlays.Hazards),
		HasHeritage:  overlays.HasHeritageConstraints,
	}
	if controls.HeightLimit != nil {
		brief.MaxHeightM = controls.HeightLimit.MaxValue
	}
	if controls.FSR != nil {
		brief.MaxFSR = controls.FSR.MaxValue
	}
	return brief, nil
}

func (s *Service) validate(req Request) error {
	if err := req.Point.Validate(); err != nil {
		return err
	}
	if _, err := planning.ParseState(string(req.State)); err != nil {
		return err
	}
	if req.LotAreaSqm != nil && *req.LotAreaSqm <= 0 {
		return errors.InvalidParam("lot area must be positive")
	}
	return nil
}

func (s *Service) confidence(state planning.State) float64 {
	if s.registry.HasLiveData(state) {
		return liveDataConfidence
	}
	return fallbackDataConfidence
}

func (s *Service) dataSources(state planning.State) []string {
	viewer := "QLD Globe"
	if state == planning.StateNSW {
		viewer = "ePlanning Spatial Viewer"
	}
	return []string{
		fmt.Sprintf("%s Planning Portal", state),
		viewer,
	}
}

func (s *Service) limitations(state planning.State) []string {
	limitations := []string{
		"This analysis is for informational purposes only",
		"Always verify with local council planning department",
		"Development controls may vary - check specific LEP/planning scheme",
	}
	if !s.registry.HasLiveData(state) {
		limitations = append(limitations,
			fmt.Sprintf("Limited data available for %s - manual verification recommended", state))
	}
	return limitations
}

func (s *Service) observe(state planning.State, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.AnalysesTotal.WithLabelValues(string(state), status).Inc()
	if status == "ok" {
		s.metrics.AnalysisDuration.WithLabelValues(string(state)).Observe(s.now().Sub(start).Seconds())
	}
}

func (s *Service) publish(ctx context.Context, result *planning.PropertyAnalysis, elapsed time.Duration) {
	id := common.GenerateID("an")
	event := kafka.AnalysisCompletedEvent{
		AnalysisID:      id,
		State:           string(result.Location.State),
		Point:           result.Location.Point,
		ZoneCode:        result.Zoning.ZoneCode,
		ZoneCategory:    string(result.Zoning.ZoneCategory),
		ConfidenceScore: result.ConfidenceScore,
		DurationMs:      elapsed.Milliseconds(),
		CompletedAt:     result.AnalysisDate,
	}
	if err := s.publisher.Publish(ctx, kafka.TopicAnalysisCompleted, id, event); err != nil {
		s.logger.Warn("analysis event not published", logging.Err(err))
	}
}
