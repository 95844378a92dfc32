package models

// Market is the exchange an event belongs to.
type Market string

const (
	MarketUS     Market = "US"
	MarketTW     Market = "TW"
	MarketCN     Market = "CN"
	MarketGlobal Market = "Global"
)

// EventType classifies a calendar event.
type EventType string

const (
	EventCritical  EventType = "critical"
	EventHot       EventType = "hot"
	EventCorporate EventType = "corporate"
	EventMacro     EventType = "macro"
	EventHoliday   EventType = "holiday"
)

// Event is a calendar entry.
type Event struct {
	ID            string    `json:"id"`
	Date          string    `json:"date"`
	Title         string    `json:"title"`
	Market        Market    `json:"market"`
	Type          EventType `json:"type"`
	Trend         string    `json:"trend"` // bull, bear, neutral, volatile
	RelatedStocks []string  `json:"relatedStocks,omitempty"`
	Description   string    `json:"description"`
	Strategy      string    `json:"strategy"`
}

// HotTrend is one trending sector with its associated tickers.
type HotTrend struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Strength  int      `json:"strength"` // capital inflow strength, 0-100
	Trend     string   `json:"trend"`    // up, down, neutral, volatile
	Stocks    []string `json:"stocks"`
	Reason    string   `json:"reason"`
	UpdatedAt string   `json:"updatedAt"`
}

// Strategy is one trading recommendation.
type Strategy struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"` // bull, bear, neutral, volatile
	Desc      string `json:"desc"`
	Risk      string `json:"risk"` // 低, 中, 高
	Target    string `json:"target"`
	UpdatedAt string `json:"updatedAt"`
}
