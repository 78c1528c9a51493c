// Package aggr fans a logical request out to every eligible addon and folds
// the responses back into per-addon groups.
//
// A round has two halves. PlanAndDispatch turns a Request into concrete
// ResourceRequests (one per addon that can serve it), creates a loading
// Group per ResourceRequest and one dispatch effect per group. As effects
// complete, each AddonResponse message is offered to Reconcile, which
// replaces the group whose request matches and ignores everything else.
//
// Matching is by ResourceRequest equality only: a response whose request no
// longer has a group (for example after the user started a new round) is
// dropped silently and reported as "unchanged".
package aggr
