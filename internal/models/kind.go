// Package models defines the dataset documents served by StockCal.
package models

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three datasets.
type Kind string

const (
	// KindEvents is the calendar of market events (edited by hand).
	KindEvents Kind = "events"

	// KindHotTrends is the daily hot-trend snapshot (regenerated daily).
	KindHotTrends Kind = "hot-trends"

	// KindStrategies is the daily strategy snapshot (regenerated daily).
	KindStrategies Kind = "strategies"
)

// AllKinds lists every dataset in serving order.
var AllKinds = []Kind{KindEvents, KindHotTrends, KindStrategies}

// GeneratedKinds lists the datasets the content generator may rewrite.
var GeneratedKinds = []Kind{KindHotTrends, KindStrategies}

// FileName returns the on-disk file name for the dataset.
func (k Kind) FileName() string {
	switch k {
	case KindEvents:
		return "data_events.json"
	case KindHotTrends:
		return "data_hot_trends.json"
	case KindStrategies:
		return "data_strategies.json"
	default:
		return ""
	}
}

// Valid reports whether k is a known dataset.
func (k Kind) Valid() bool {
	return k.FileName() != ""
}

// Generated reports whether the content generator owns this dataset.
func (k Kind) Generated() bool {
	return k == KindHotTrends || k == KindStrategies
}

// NewDocument returns an empty document of the kind's shape.
func (k Kind) NewDocument() Document {
	switch k {
	case KindEvents:
		return &EventsDocument{}
	case KindHotTrends:
		return &HotTrendsDocument{}
	case KindStrategies:
		return &StrategiesDocument{}
	default:
		return nil
	}
}

// ParseKind accepts the canonical name plus the camelCase and snake_case
// spellings used by older tooling (hotTrends, hot_trends).
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "_", "-")
	switch norm {
	case "events":
		return KindEvents, nil
	case "hot-trends", "hottrends":
		return KindHotTrends, nil
	case "strategies":
		return KindStrategies, nil
	}
	return "", fmt.Errorf("unknown dataset %q", s)
}
