package socket

import "strconv"

const (
	VersionMajor = 3
	VersionMinor = 1
	VersionPatch = 0
)

// Version is "MAJOR.MINOR.PATCH".
var Version = strconv.Itoa(VersionMajor) + "." + strconv.Itoa(VersionMinor) + "." + strconv.Itoa(VersionPatch)

func GetVersion() string {
	return Version
}
