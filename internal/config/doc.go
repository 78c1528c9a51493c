// Package config loads the mediacore configuration.
//
// Configuration is YAML (unknown keys rejected) or CUE. Either way the
// decoded value gets defaults applied and is then unified with the embedded
// CUE schema (#Config in schema.cue), so both formats obey the same rules.
//
// Example:
//
//	addons:
//	  - https://v3-cinemeta.strem.io/manifest.json
//	storage:
//	  driver: sqlite
//	  path: mediacore.db
//	http:
//	  timeout: 10s
//	  rate_limit: 5
//	log_level: info
package config
