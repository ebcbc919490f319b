// Package docker runs the test-collection command inside a throwaway
// container, reproducing a clean CI runner environment on the local
// machine.
//
// It wraps the Docker Engine SDK client with automatic socket detection
// across platforms (Linux, macOS, Windows) and exposes a single
// collection-oriented operation: create a container from a given image
// with the workspace bind-mounted, run the collection command, wait for
// it, capture its logs, and return its exit code for classification.
package docker
