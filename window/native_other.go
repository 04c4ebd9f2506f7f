//go:build !windows

package window

// Native returns the Manager backed by the operating system.
func Native() (Manager, error) {
	return nil, ErrUnsupported
}
