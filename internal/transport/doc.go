// Package transport talks to addons.
//
// Two transports exist. HTTP is the current protocol: the manifest lives at
// a URL ending in /manifest.json and every resource is a sibling path
// (/catalog/movie/top.json, /stream/movie/tt1.json, ...). Legacy speaks the
// older JSON-RPC protocol served under /stremio/v1.
//
// For picks the transport from the URL. Every call goes through an
// env.Environment, so transports are fully deterministic under testenv.
package transport
