package rhi

// API version implemented by this module.
const (
	VersionMajor = 1
	VersionMinor = 85
)

// Version is a major/minor API version pair.
type Version struct {
	Major uint16
	Minor uint16
}

// CurrentVersion returns the API version implemented by this module.
func CurrentVersion() Version {
	return Version{Major: VersionMajor, Minor: VersionMinor}
}
