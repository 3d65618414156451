// Package sources implements a unified abstraction for watchlist record
// sources.
//
// # Overview
//
// A source is an independently configured external record provider - a
// sanctions list, a wanted-persons API, a local denylist. Every source
// implements the Client interface, so from the screening engine's
// perspective all sources are interchangeable: the engine fans a name out
// to every enabled client and aggregates whatever comes back.
//
// # Failure Model
//
// A client that cannot complete a lookup (missing credential, network
// error, non-2xx response, malformed payload, depleted rate-limit bucket)
// returns (nil, err) - never a "clear" result. The engine records such
// sources as "no data", which is weaker evidence than "checked, clear".
//
// # Adapters
//
// HTTPSource is the shared base for network-backed adapters: connection
// pooling, retry with exponential backoff, a status-code error taxonomy,
// and consecutive-failure health tracking. Concrete adapters live in
// subpackages (ofac, fbi, interpol, sanctions, generic, dataset) and own
// their endpoint, auth, and response parsing.
package sources
