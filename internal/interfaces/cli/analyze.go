package cli

import (
	"github.com/spf13/cobra"

	"github.com/landgauge/landgauge/internal/application/analysis"
	"github.com/landgauge/landgauge/internal/domain/planning"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

type analyzeOptions struct {
	lat             float64
	lon             float64
	state           string
	address         string
	lotPlan         string
	lotAreaSqm      float64
	heritageRadiusM int
	noScenarios     bool
	brief           bool
}

func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze zoning, controls, overlays, and development potential for a point",
		Example: `  landgauge analyze --lat -33.87 --lon 151.21 --state NSW --lot-area 650
  landgauge analyze --lat -27.47 --lon 153.03 --state QLD --brief`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.lat, "lat", 0, "latitude (WGS84)")
	f.Float64Var(&opts.lon, "lon", 0, "longitude (WGS84)")
	f.StringVar(&opts.state, "state", "", "state or territory code (NSW, QLD, VIC, ...)")
	f.StringVar(&opts.address, "address", "", "street address for the report header")
	f.StringVar(&opts.lotPlan, "lot-plan", "", "lot/plan identifier")
	f.Float64Var(&opts.lotAreaSqm, "lot-area", 0, "lot area in square metres")
	f.IntVar(&opts.heritageRadiusM, "heritage-radius", 0, "heritage search radius in metres (default 100)")
	f.BoolVar(&opts.noScenarios, "no-scenarios", false, "skip development scenario computation")
	f.BoolVar(&opts.brief, "brief", false, "produce the condensed report")

	cobra.CheckErr(cmd.MarkFlagRequired("lat"))
	cobra.CheckErr(cmd.MarkFlagRequired("lon"))
	cobra.CheckErr(cmd.MarkFlagRequired("state"))
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cc := getCLIContext(cmd)
	ctx := cmd.Context()

	state, err := planning.ParseState(opts.state)
	if err != nil {
		return err
	}
	point := geo.Coordinates{Lat: opts.lat, Lon: opts.lon}

	svc, cleanup, err := buildAnalysisService(ctx, cc)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.brief {
		result, err := svc.AnalyzeBrief(ctx, point, state)
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	}

	req := analysis.Request{
		Point:            point,
		State:            state,
		Address:          opts.address,
		LotPlan:          opts.lotPlan,
		IncludeScenarios: !opts.noScenarios,
		HeritageRadiusM:  opts.heritageRadiusM,
	}
	if opts.lotAreaSqm > 0 {
		req.LotAreaSqm = &opts.lotAreaSqm
	}

	result, err := svc.Analyze(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
