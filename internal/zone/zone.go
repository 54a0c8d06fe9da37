// Package zone classifies server load metrics into health zones.
package zone

import (
	"fmt"
	"strings"
)

// Zone is an ordinal health category. Higher values are more severe.
type Zone int

const (
	Good Zone = iota
	Warning
	Critical
)

var zoneNames = [...]string{"good", "warning", "critical"}

func (z Zone) String() string {
	if z < Good || z > Critical {
		return zoneNames[Good]
	}
	return zoneNames[z]
}

// MarshalText implements encoding.TextMarshaler.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (z *Zone) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// Parse converts a zone name to a Zone.
func Parse(s string) (Zone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good":
		return Good, nil
	case "warning":
		return Warning, nil
	case "critical":
		return Critical, nil
	default:
		return Good, fmt.Errorf("unknown zone: %q", s)
	}
}

// Metric identifies a classified server metric.
type Metric string

const (
	MetricUsers     Metric = "users"
	MetricModels    Metric = "models"
	MetricAvgSize   Metric = "avg_size"
	MetricTotalSize Metric = "total_size"
)

// Cut points per metric. Values at a bound belong to the lower zone, except
// the lower total size bound which is exclusive.
const (
	UsersGoodMax       = 20
	UsersWarningMax    = 70
	ModelsGoodMax      = 60
	ModelsWarningMax   = 100
	AvgSizeGoodMaxMB   = 400
	AvgSizeWarnMaxMB   = 600
	TotalSizeGoodLtGB  = 50
	TotalSizeWarnMaxGB = 100
)

// Classify maps a metric value to its zone. Unknown metrics are Good.
func Classify(metric Metric, value float64) Zone {
	switch metric {
	case MetricUsers:
		return byMax(value, UsersGoodMax, UsersWarningMax)
	case MetricModels:
		return byMax(value, ModelsGoodMax, ModelsWarningMax)
	case MetricAvgSize:
		return byMax(value, AvgSizeGoodMaxMB, AvgSizeWarnMaxMB)
	case MetricTotalSize:
		switch {
		case value < TotalSizeGoodLtGB:
			return Good
		case value <= TotalSizeWarnMaxGB:
			return Warning
		default:
			return Critical
		}
	default:
		return Good
	}
}

func byMax(value, goodMax, warningMax float64) Zone {
	switch {
	case value <= goodMax:
		return Good
	case value <= warningMax:
		return Warning
	default:
		return Critical
	}
}

// Worst returns the most severe of zones, or Good when none are given.
func Worst(zones ...Zone) Zone {
	worst := Good
	for _, z := range zones {
		if z > worst {
			worst = z
		}
	}
	return worst
}
