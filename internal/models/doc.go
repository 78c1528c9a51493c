// Package models holds the reducers driven by the engine Muxer.
//
// Ctx owns the user profile (installed addons) and is registered first, so
// every other model sees the profile as updated by the same message.
// Catalogs and Streams read the profile through engine.CtxContainer and run
// aggregation rounds over the installed addons.
package models
