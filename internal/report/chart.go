package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"quantsim/internal/backtest"
)

const (
	colorEquity   = "#3b82f6"
	colorDrawdown = "#f87171"

	chartWidthPx  = 1200
	chartHeightPx = 420
)

// RenderEquityChart writes an interactive HTML page with the equity curve and
// the drawdown-from-peak series for a run. It returns the output file path.
func RenderEquityChart(result *backtest.Result, strategy, outDir string) (string, error) {
	if len(result.EquityCurve) == 0 {
		return "", fmt.Errorf("no equity points to chart")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", outDir, err)
	}

	xAxis := make([]string, len(result.EquityCurve))
	equity := make([]opts.LineData, len(result.EquityCurve))
	drawdown := make([]opts.LineData, len(result.EquityCurve))

	peak := result.EquityCurve[0].Equity
	for i, point := range result.EquityCurve {
		xAxis[i] = point.Timestamp.Format("2006-01-02 15:04")
		equity[i] = opts.LineData{Value: round(point.Equity, 2)}
		if point.Equity > peak {
			peak = point.Equity
		}
		var ddPercent float64
		if peak > 0 {
			ddPercent = (peak - point.Equity) / peak * 100
		}
		drawdown[i] = opts.LineData{Value: round(-ddPercent, 4)}
	}

	equityChart := newLineChart(
		fmt.Sprintf("Equity Curve: %s", strategy),
		fmt.Sprintf("PnL %.2f | Sharpe %.3f | MaxDD %.2f%%", result.TotalPnL, result.SharpeRatio, result.MaxDrawdownPercent),
	)
	equityChart.SetXAxis(xAxis)
	equityChart.AddSeries("Equity", equity, charts.WithLineStyleOpts(opts.LineStyle{Color: colorEquity, Width: 2}))

	drawdownChart := newLineChart("Drawdown from Peak (%)", "")
	drawdownChart.SetXAxis(xAxis)
	drawdownChart.AddSeries("Drawdown", drawdown,
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorDrawdown, Width: 2}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.25)}),
	)

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(equityChart, drawdownChart)

	outPath := filepath.Join(outDir, fmt.Sprintf("equity_%s.html", strategy))
	file, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to create chart file %s: %w", outPath, err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	return outPath, nil
}

func newLineChart(title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  types.ThemeWesteros,
			Width:  fmt.Sprintf("%dpx", chartWidthPx),
			Height: fmt.Sprintf("%dpx", chartHeightPx),
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle, Left: "left"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line
}

func round(val float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}
