// Package version reports the build identity of a service binary.
//
// Values are set at compile time via -ldflags and completed from the
// module build info:
//
//	go build -ldflags "-X github.com/kbukum/scod/version.Version=1.0.0"
package version
