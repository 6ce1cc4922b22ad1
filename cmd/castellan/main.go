// Castellan is the storage and versioning core of a policy engine: it
// persists access-control rules and delegation grants across interchangeable
// serialization formats and on-disk layouts.
//
// Usage:
//
//	# Check that policy files decode cleanly
//	castellan validate --base ./storage --driver yaml
//
//	# Re-encode a policy set from one format to another
//	castellan convert --base ./storage --from json --to toml
//
//	# List detected policy versions
//	castellan versions --base ./storage
//
//	# Inspect and revoke delegations
//	castellan delegations list --base ./storage
//	castellan delegations revoke <id> --base ./storage
//
//	# Show version information
//	castellan version
package main

func main() {
	Execute()
}
