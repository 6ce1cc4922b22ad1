package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// policiesArea and delegationsArea are the two storage areas under the base
// path that share the version resolution rules.
const (
	policiesArea    = "policies"
	delegationsArea = "delegations"
)

// semverPattern matches plain semantic version directory names, e.g. "2.5.0".
var semverPattern = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)$`)

// semanticVersion is a parsed version directory name. Comparison is numeric
// per component, so "10.0.0" orders above "2.0.0".
type semanticVersion struct {
	major, minor, patch int
	name                string
}

func parseSemanticVersion(name string) (semanticVersion, bool) {
	m := semverPattern.FindStringSubmatch(name)
	if m == nil {
		return semanticVersion{}, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return semanticVersion{major: major, minor: minor, patch: patch, name: name}, true
}

func (v semanticVersion) less(o semanticVersion) bool {
	if v.major != o.major {
		return v.major < o.major
	}
	if v.minor != o.minor {
		return v.minor < o.minor
	}
	return v.patch < o.patch
}

// resolveAreaDir resolves the concrete directory for a storage area.
//
// With versioning disabled the area directory itself is used. With a pinned
// version the version subdirectory is used without checking that it exists;
// a missing directory reads as an empty store. With versioning enabled and
// no pin, the greatest semantic version among the immediate subdirectories
// wins; when nothing parses as a version the resolver behaves as if
// versioning were disabled.
func resolveAreaDir(basePath, area string, versioned bool, version string) (string, error) {
	areaDir := filepath.Join(basePath, area)

	if !versioned {
		return areaDir, nil
	}
	if version != "" {
		return filepath.Join(areaDir, version), nil
	}

	latest, err := latestVersion(areaDir)
	if err != nil {
		return "", err
	}
	if latest == "" {
		return areaDir, nil
	}
	return filepath.Join(areaDir, latest), nil
}

// latestVersion returns the greatest semantic version directory name under
// dir, or "" when none exists. A missing directory is not an error; any
// other read failure is.
func latestVersion(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", &LoadError{Path: dir, Message: "failed to list version directories", Cause: err}
	}

	var best semanticVersion
	found := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, ok := parseSemanticVersion(entry.Name())
		if !ok {
			continue
		}
		if !found || best.less(v) {
			best = v
			found = true
		}
	}

	if !found {
		return "", nil
	}
	return best.name, nil
}

// ListVersions returns all semantic version directory names under the
// policies area of basePath, sorted ascending. Used for version auditing and
// migration tooling.
func ListVersions(basePath string) ([]string, error) {
	dir := filepath.Join(basePath, policiesArea)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &LoadError{Path: dir, Message: "failed to list version directories", Cause: err}
	}

	var versions []semanticVersion
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if v, ok := parseSemanticVersion(entry.Name()); ok {
			versions = append(versions, v)
		}
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].less(versions[j]) })

	names := make([]string, 0, len(versions))
	for _, v := range versions {
		names = append(names, v.name)
	}
	return names, nil
}
