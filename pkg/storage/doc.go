// Package storage persists and retrieves access-control policies and
// delegation grants across interchangeable serialization formats and on-disk
// layouts.
//
// The entry point is the Manager, a stateful fluent façade over the current
// driver, version, and file-mode selection:
//
//	mgr, err := storage.NewManager(&cfg.Storage, factory, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	repo, err := mgr.Driver(storage.DriverYAML).Version("2.0.0").Policy()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pol, err := repo.GetPoliciesFor(subject, resource)
//
// Driver, Version, and FileMode mutate the manager and return it; the
// manager is not a builder producing independent snapshots. Callers that
// need to branch configurations safely should call Snapshot first. Policy
// and Delegation build a fresh repository for the selection current at call
// time; every repository instance carries its own decode cache and no state
// leaks between instances.
//
// On-disk layout:
//
//	<base>/policies/[<version>/]policies.<ext>   single file mode
//	<base>/policies/[<version>/]*.<ext>          multiple file mode
//	<base>/delegations/<id>.json                 delegation records
//
// When versioning is enabled and no version is pinned, the repository picks
// the numerically greatest semantic version among the subdirectories of
// policies/; if none parses as a version it falls back to reading policies/
// directly.
package storage
