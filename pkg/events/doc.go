// Package events publishes sync notifications.
//
// After a sync run writes templates, a templates_updated event is published
// on the configured topic (default "alice/ha/sync") to two sinks, combined
// with Fanout:
//
//   - MQTTPublisher sends the event to the broker at events.mqtt.url with
//     the configured QoS (default 1). The payload carries the event name,
//     its source and the run ID:
//
//     {"event":"templates_updated","source":"github","run_id":"..."}
//
//   - Hub pushes the event to websocket subscribers of the /events
//     endpoint; an optional ?topic= query parameter restricts delivery to
//     one topic. Publishing never blocks on subscribers. Each subscriber
//     has a bounded send buffer; a subscriber whose buffer is full is
//     disconnected. A publish with no subscribers succeeds.
package events
