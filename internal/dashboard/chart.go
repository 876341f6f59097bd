package dashboard

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/display"
	"github.com/i474232898/weather-dashboard/internal/observability"
)

// ChartUpdater receives the forecast series.
type ChartUpdater interface {
	Update(labels []string, values []int)
}

// ChartPresenter owns the temperature chart. Charts are never relabeled in
// place: every update destroys the live instance and builds a new one.
type ChartPresenter struct {
	sink    display.Sink
	region  display.Region
	label   string
	metrics *observability.Metrics

	mu      sync.Mutex
	current *chartInstance
	live    int
}

type chartInstance struct {
	spec      display.ChartSpec
	destroyed bool
}

func NewChartPresenter(sink display.Sink, label string, metrics *observability.Metrics) *ChartPresenter {
	return &ChartPresenter{
		sink:    sink,
		region:  display.RegionTemperatureChart,
		label:   label,
		metrics: metrics,
	}
}

// Update replaces the chart with a single-series line chart of values.
func (p *ChartPresenter) Update(labels []string, values []int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		p.destroy(p.current)
		if p.metrics != nil {
			p.metrics.ChartRebuilds.Inc()
		}
	}

	spec := display.ChartSpec{
		ID:   uuid.NewString(),
		Type: "line",
		Data: display.ChartData{
			Labels: slices.Clone(labels),
			Datasets: []display.Dataset{{
				Label:           p.label,
				Data:            slices.Clone(values),
				BorderColor:     "orange",
				BackgroundColor: "rgb(240, 11, 11)",
				BorderWidth:     2,
			}},
		},
		// Small fluctuations stay visible when the axis does not start at zero.
		Options: display.ChartOptions{Responsive: true, BeginAtZero: false},
	}
	p.current = &chartInstance{spec: spec}
	p.live++
	p.sink.SetChart(p.region, &spec)
}

func (p *ChartPresenter) destroy(c *chartInstance) {
	if c.destroyed {
		return
	}
	c.destroyed = true
	p.live--
	p.sink.SetChart(p.region, nil)
}

// Live returns the number of chart instances not yet destroyed.
func (p *ChartPresenter) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Current returns the live chart, if any.
func (p *ChartPresenter) Current() (display.ChartSpec, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.destroyed {
		return display.ChartSpec{}, false
	}
	return p.current.spec, true
}
