package events

// EventCollector is embedded in aggregates to collect domain events raised
// while their state changes. Events are drained once they have been written
// to the outbox.
type EventCollector struct {
	events []DomainEvent
}

// Record appends domain events to the collector.
func (c *EventCollector) Record(evts ...DomainEvent) {
	c.events = append(c.events, evts...)
}

// Events returns the collected domain events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// ClearEvents returns the collected domain events and clears the internal slice.
func (c *EventCollector) ClearEvents() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
