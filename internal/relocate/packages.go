package relocate

// Package pairs an upstream name with the search pattern locating its
// stray binaries under the brew prefix.
type Package struct {
	Name    string
	Pattern string
}

// BuiltinPackages returns the packages a default run processes, in
// order. Patterns follow the scan package's find -iregex semantics.
func BuiltinPackages() []Package {
	return []Package{
		{Name: "meld", Pattern: `meld.*`},
		{Name: "virtualbox", Pattern: `v(irtual)?box.*`},
		{Name: "openzfs", Pattern: `z(fs|pool|db|ed|hc|inject|pios|stream|test).*`},
	}
}
