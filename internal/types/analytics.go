package types

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

type AnalyticsMetric struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
	Trend  Trend   `json:"trend"`
	Unit   string  `json:"unit,omitempty"`
}

type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

type ModelPerformance struct {
	ModelName        string  `json:"modelName"`
	Accuracy         float64 `json:"accuracy"`
	Precision        float64 `json:"precision"`
	Recall           float64 `json:"recall"`
	F1Score          float64 `json:"f1Score"`
	ResponseTime     float64 `json:"responseTime"`
	ExperimentsCount int     `json:"experimentsCount"`
	LastEvaluated    string  `json:"lastEvaluated"`
}

type TrendAnalysis struct {
	Period  string       `json:"period"`
	Metrics TrendMetrics `json:"metrics"`
}

type TrendMetrics struct {
	Accuracy         []TimeSeriesPoint `json:"accuracy"`
	SuccessRate      []TimeSeriesPoint `json:"successRate"`
	ResponseTime     []TimeSeriesPoint `json:"responseTime"`
	EvaluationsCount []TimeSeriesPoint `json:"evaluationsCount"`
}

type ComparisonData struct {
	Models           []ModelPerformance `json:"models"`
	Categories       []string           `json:"categories"`
	ComparisonMatrix [][]float64        `json:"comparisonMatrix"`
}

type CategoryPerformance struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Count    int     `json:"count"`
	Change   float64 `json:"change"`
}

type HourlyUsage struct {
	Hour  int     `json:"hour"`
	Usage float64 `json:"usage"`
	Label string  `json:"label"`
}

type UsagePatterns struct {
	Hourly []HourlyUsage     `json:"hourly"`
	Daily  []TimeSeriesPoint `json:"daily"`
	Weekly []TimeSeriesPoint `json:"weekly"`
}

type ExperimentAnalytics struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	AvgAccuracy float64           `json:"avgAccuracy"`
	TotalRuns   int               `json:"totalRuns"`
	SuccessRate float64           `json:"successRate"`
	LastRun     string            `json:"lastRun"`
	Trend       string            `json:"trend"`
	Performance []TimeSeriesPoint `json:"performance"`
}
