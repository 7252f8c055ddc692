// Package interaction decodes Slack's [interaction payloads] and routes
// them to the handlers that applications register for them.
//
// [interaction payloads]: https://docs.slack.dev/reference/interaction-payloads
package interaction
