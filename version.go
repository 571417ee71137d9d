package dynamicfee

import "fmt"

// Semantic versioning of the daemon and library.
const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// Version returns the application version as a properly formed string.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
}
