// Package moodle is a minimal client for Moodle's REST web services API.
//
// Every web service function is reachable through [Client.Call], which
// flattens nested parameters into Moodle's bracket notation
// (values[0], users[0][id], ...) and issues a single form-encoded POST.
// Convenience wrappers exist for the common functions
// ([Client.GetSiteInfo], [Client.GetUsersByField]).
//
// Failures are reported as three distinguishable kinds: [ConfigError]
// before any network I/O, [TransportError] for network-layer failures
// (including timeouts), and [RemoteError] for error payloads or non-2xx
// statuses returned by Moodle.
package moodle
