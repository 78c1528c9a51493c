// Package harness runs YAML scenarios against the real runtime.
//
// A scenario declares addon fixtures (a manifest served at a URL), canned
// responses for resource URLs, and a list of steps. Steps drive a
// models.Runtime whose Environment is a testenv.Env: every effect is held
// until a step runs it, so the order in which addon responses arrive is
// part of the scenario.
//
// Steps:
//
//	install: <url>              install an addon and run the install to completion
//	uninstall: <url>            uninstall an addon
//	load_catalogs: {type, extra} start a catalog round (held, not delivered)
//	load_streams: {type, id}     start a stream round (held, not delivered)
//	deliver: {addon, path}       run the held request for one addon
//	deliver_all: true            run everything that is held, in order
//	advance: <duration>          move the virtual clock
//	unload: true                 clear aggregation state
//
// The trace records every request made and every state change, in order.
// RunWithGolden compares it, together with the final state, to a golden
// file in testdata/golden.
//
// Example:
//
//	name: two_addons
//	description: Responses arrive out of order
//	addons:
//	  - url: https://one.example/manifest.json
//	    manifest: {id: one, version: 1.0.0, ...}
//	responses:
//	  https://one.example/catalog/movie/top.json: {status: 503}
//	steps:
//	  - install: https://one.example/manifest.json
//	  - load_catalogs: {}
//	  - deliver: {addon: https://one.example/manifest.json}
//	assertions:
//	  - type: group_states
//	    model: catalogs
//	    states: [err]
package harness
