// Package delegation stores time-bounded capability grants between
// principals.
//
// Each delegation is one JSON document keyed by its id under the delegations
// area of the storage base path. Revocation rewrites the stored record in
// place; expiry is derived at query time from ExpiresAt and never written
// back, so an expired-but-not-revoked record may still read "active" on disk
// while every query treats it as expired. The Sweeper reclaims terminal
// records on a cron schedule.
package delegation
