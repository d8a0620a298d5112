// Package queries holds the read side of the order engine. Handlers query the store
// with plain SQL and return view structs shaped for the REST surface; they never go
// through the aggregates' write path.
package queries
