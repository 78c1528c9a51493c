// Package engine implements the reactive update loop: effects, the Update
// contract, containers, and the Muxer that drives them.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// The Muxer processes all messages in a single goroutine. Every Update call
// for every container happens there, so reducers never race with each other
// and never need locks around their own state.
//
// Message Processing Flow:
//  1. Messages enqueued to FIFO queue (external actions via Enqueue, effect
//     results by the effects themselves)
//  2. Muxer.Run() (or Step()) dequeues one message at a time
//  3. Dispatch() offers the message once to every container, in
//     registration order, and joins the returned Effects
//  4. Each Effect is handed to Environment.Exec and runs concurrently
//  5. An Effect yields exactly one message, which is enqueued (back to 1)
//
// Reducers never suspend. Suspension happens only inside effects (network,
// storage). Effects are never cancelled: a message that became irrelevant
// while its effect was running is still delivered, and the consuming model
// decides whether it still matters.
//
// The Changed flag of a batch lets the Muxer skip change notifications for
// containers whose state did not observably change.
package engine
