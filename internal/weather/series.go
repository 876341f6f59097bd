package weather

import "time"

// Series is the pair of parallel label/value sequences handed to the chart.
type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Head returns at most n points, preserving provider order. The provider is
// trusted to deliver them chronologically; nothing is sorted here.
func Head(points []ForecastPoint, n int) []ForecastPoint {
	if n < 0 {
		n = 0
	}
	if len(points) > n {
		return points[:n]
	}
	return points
}

// TimeLabel formats the local time of day as HH:MM.
func TimeLabel(t time.Time, tz *time.Location) string {
	if tz == nil {
		tz = time.Local
	}
	return t.In(tz).Format("15:04")
}

// BuildSeries derives time labels and rounded temperatures from points.
func BuildSeries(points []ForecastPoint, tz *time.Location) Series {
	s := Series{
		Labels: make([]string, 0, len(points)),
		Values: make([]int, 0, len(points)),
	}
	for _, p := range points {
		s.Labels = append(s.Labels, TimeLabel(p.Time, tz))
		s.Values = append(s.Values, Round(p.Temperature))
	}
	return s
}
