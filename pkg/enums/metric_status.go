package enums

// MetricStatus describes how realized sales compare to a target.
type MetricStatus string

const (
	MetricStatusPending  MetricStatus = "pending"
	MetricStatusMet      MetricStatus = "met"
	MetricStatusExceeded MetricStatus = "exceeded"
)

func (s MetricStatus) String() string {
	return string(s)
}
