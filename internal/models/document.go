package models

import "time"

// DateLayout is the format of every date field in the datasets.
const DateLayout = "2006-01-02"

// Document is a whole dataset file. Documents are replaced wholesale.
type Document interface {
	// Updated returns the updatedAt stamp.
	Updated() string
	// Len returns the number of records in the payload.
	Len() int
	// Stamp sets updatedAt on the document and on any record that carries one.
	Stamp(date string)
}

// EventsDocument is the content of data_events.json.
type EventsDocument struct {
	UpdatedAt string  `json:"updatedAt"`
	Events    []Event `json:"events"`
}

// HotTrendsDocument is the content of data_hot_trends.json.
type HotTrendsDocument struct {
	UpdatedAt string     `json:"updatedAt"`
	Trends    []HotTrend `json:"trends"`
}

// StrategiesDocument is the content of data_strategies.json.
type StrategiesDocument struct {
	UpdatedAt  string     `json:"updatedAt"`
	Strategies []Strategy `json:"strategies"`
}

func (d *EventsDocument) Updated() string { return d.UpdatedAt }
func (d *EventsDocument) Len() int        { return len(d.Events) }
func (d *EventsDocument) Stamp(date string) {
	d.UpdatedAt = date
}

func (d *HotTrendsDocument) Updated() string { return d.UpdatedAt }
func (d *HotTrendsDocument) Len() int        { return len(d.Trends) }
func (d *HotTrendsDocument) Stamp(date string) {
	d.UpdatedAt = date
	for i := range d.Trends {
		d.Trends[i].UpdatedAt = date
	}
}

func (d *StrategiesDocument) Updated() string { return d.UpdatedAt }
func (d *StrategiesDocument) Len() int        { return len(d.Strategies) }
func (d *StrategiesDocument) Stamp(date string) {
	d.UpdatedAt = date
	for i := range d.Strategies {
		d.Strategies[i].UpdatedAt = date
	}
}

// EventWindow returns the rolling window the events calendar covers: the
// first day of now's month through the last day of the second month after it.
func EventWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 3, -1)
	return start, end
}

// Stale returns the events whose date falls outside the rolling window or
// cannot be parsed. Stale events are reported, never removed.
func (d *EventsDocument) Stale(now time.Time) []Event {
	start, end := EventWindow(now)
	var stale []Event
	for _, e := range d.Events {
		day, err := time.ParseInLocation(DateLayout, e.Date, now.Location())
		if err != nil || day.Before(start) || day.After(end) {
			stale = append(stale, e)
		}
	}
	return stale
}
