// Package testenv provides a deterministic Environment for tests.
//
// An Env records every fetch in a request log, keeps storage in memory,
// reads time from a virtual clock and defers every Exec'd task until the
// test runs it explicitly. A fresh Env is created per test; Reset restores
// all state for tests that reuse one.
//
// Typical use:
//
//	e := testenv.New(testenv.WithResponder(testenv.Static(routes)))
//	mx := engine.New(e)
//	...
//	mx.Dispatch(msg.NewLoadCatalogs(req))
//	e.RunPending() // effects run, results are enqueued
//	for mx.Step() {}
package testenv
