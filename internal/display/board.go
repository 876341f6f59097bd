package display

import (
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"
)

// Alert is a user-facing message raised by a controller.
type Alert struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// State is a point-in-time copy of everything on the board.
type State struct {
	Version uint64                `json:"version"`
	Text    map[Region]string     `json:"text"`
	Images  map[Region]string     `json:"images"`
	Visible map[Region]bool       `json:"visible"`
	Rows    map[Region][][]string `json:"rows"`
	Options map[Region][]string   `json:"options"`
	Charts  map[Region]ChartSpec  `json:"charts"`
	Maps    map[Region]MapView    `json:"maps"`
	Alerts  []Alert               `json:"alerts"`
}

// Board is a concurrency-safe, in-memory Sink. Every mutation bumps the
// version so pollers can tell whether anything changed.
type Board struct {
	mu sync.RWMutex

	clock   clockwork.Clock
	version *atomic.Uint64

	text    map[Region]string
	images  map[Region]string
	visible map[Region]bool
	rows    map[Region][][]string
	options map[Region][]string
	charts  map[Region]ChartSpec
	maps    map[Region]MapView

	// Oldest alerts are dropped once maxAlerts is reached.
	alerts    []Alert
	maxAlerts int // max number of alerts kept (<= 0 = unlimited)
}

var _ Sink = (*Board)(nil)

// NewBoard creates an empty board. Every region starts hidden and blank.
func NewBoard(clock clockwork.Clock, maxAlerts int) *Board {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Board{
		clock:     clock,
		version:   atomic.NewUint64(0),
		text:      make(map[Region]string),
		images:    make(map[Region]string),
		visible:   make(map[Region]bool),
		rows:      make(map[Region][][]string),
		options:   make(map[Region][]string),
		charts:    make(map[Region]ChartSpec),
		maps:      make(map[Region]MapView),
		maxAlerts: maxAlerts,
	}
}

func (b *Board) SetText(r Region, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text[r] = text
	b.version.Inc()
}

func (b *Board) SetImage(r Region, src string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.images[r] = src
	b.version.Inc()
}

func (b *Board) SetVisible(r Region, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible[r] = visible
	b.version.Inc()
}

func (b *Board) ClearRows(r Region) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rows, r)
	b.version.Inc()
}

func (b *Board) AppendRow(r Region, cells []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows[r] = append(b.rows[r], slices.Clone(cells))
	b.version.Inc()
}

func (b *Board) SetOptions(r Region, options []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.options[r] = slices.Clone(options)
	b.version.Inc()
}

func (b *Board) SetChart(r Region, chart *ChartSpec) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if chart == nil {
		delete(b.charts, r)
	} else {
		b.charts[r] = cloneChart(*chart)
	}
	b.version.Inc()
}

func (b *Board) SetMap(r Region, view MapView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maps[r] = cloneMap(view)
	b.version.Inc()
}

// Alert records message. Once more than maxAlerts are held the oldest are
// dropped.
func (b *Board) Alert(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.alerts = append(b.alerts, Alert{Message: message, At: b.clock.Now().UTC()})
	if b.maxAlerts > 0 && len(b.alerts) > b.maxAlerts {
		over := len(b.alerts) - b.maxAlerts
		b.alerts = b.alerts[over:]
	}
	b.version.Inc()
}

// Version returns the number of mutations applied so far.
func (b *Board) Version() uint64 {
	return b.version.Load()
}

func (b *Board) Text(r Region) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text[r]
}

func (b *Board) Image(r Region) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.images[r]
}

func (b *Board) Visible(r Region) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible[r]
}

func (b *Board) Rows(r Region) [][]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneRows(b.rows[r])
}

func (b *Board) Options(r Region) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.options[r])
}

func (b *Board) Chart(r Region) (ChartSpec, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.charts[r]
	if !ok {
		return ChartSpec{}, false
	}
	return cloneChart(c), true
}

func (b *Board) Map(r Region) (MapView, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.maps[r]
	if !ok {
		return MapView{}, false
	}
	return cloneMap(v), true
}

func (b *Board) Alerts() []Alert {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.alerts)
}

// State returns a deep copy of the whole board.
func (b *Board) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := State{
		Version: b.version.Load(),
		Text:    make(map[Region]string, len(b.text)),
		Images:  make(map[Region]string, len(b.images)),
		Visible: make(map[Region]bool, len(b.visible)),
		Rows:    make(map[Region][][]string, len(b.rows)),
		Options: make(map[Region][]string, len(b.options)),
		Charts:  make(map[Region]ChartSpec, len(b.charts)),
		Maps:    make(map[Region]MapView, len(b.maps)),
		Alerts:  slices.Clone(b.alerts),
	}
	for k, v := range b.text {
		s.Text[k] = v
	}
	for k, v := range b.images {
		s.Images[k] = v
	}
	for k, v := range b.visible {
		s.Visible[k] = v
	}
	for k, v := range b.rows {
		s.Rows[k] = cloneRows(v)
	}
	for k, v := range b.options {
		s.Options[k] = slices.Clone(v)
	}
	for k, v := range b.charts {
		s.Charts[k] = cloneChart(v)
	}
	for k, v := range b.maps {
		s.Maps[k] = cloneMap(v)
	}
	return s
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}

func cloneChart(c ChartSpec) ChartSpec {
	c.Data.Labels = slices.Clone(c.Data.Labels)
	datasets := make([]Dataset, len(c.Data.Datasets))
	for i, d := range c.Data.Datasets {
		d.Data = slices.Clone(d.Data)
		datasets[i] = d
	}
	c.Data.Datasets = datasets
	return c
}

func cloneMap(v MapView) MapView {
	v.Layers = slices.Clone(v.Layers)
	if v.Popup != nil {
		p := *v.Popup
		p.Lines = slices.Clone(p.Lines)
		v.Popup = &p
	}
	return v
}
