// Package policy defines the value objects the storage layer persists and the
// evaluation layer consumes: subjects, resources, rules, and ordered rule
// sequences.
//
// All types in this package are immutable data carriers. Validation happens at
// construction; a zero-value Subject or Resource is invalid and the
// constructors reject it. "Updates" such as revoking a delegation never mutate
// a value in place; the storage layer replaces the stored record instead.
package policy
