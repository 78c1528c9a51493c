// Package types defines the addon wire representation shared by every other
// package: addon descriptors and manifests, resource references and requests,
// resource responses, and the persisted user profile.
//
// This package imports nothing internal. Transport, aggregation, models and
// the environment all build on it, never the other way around.
//
// Key design constraints:
//   - JSON field names follow the addon protocol (camelCase), not Go style
//   - ResourceRequest equality (Equal) is the only correlation key between a
//     dispatched fetch and its response; there is no transaction id
//   - MarshalCanonical is the only serialization used for golden traces and
//     request log bodies, so those stay byte-stable across runs
package types
