package searchworker

import "time"

// EventName identifies search refresh requests on the bus and in Inngest.
const EventName = "search/term.requested"

type SearchRequestedEventData struct {
	SearchTerm string `json:"search_term"`
	// Insights asks the worker to request insights once the cache is warm.
	Insights bool `json:"insights,omitempty"`
}

type SearchRequestedEnvelope struct {
	EventName string                   `json:"event_name"`
	EventID   string                   `json:"event_id"`
	TS        time.Time                `json:"ts"`
	Data      SearchRequestedEventData `json:"data"`
}
