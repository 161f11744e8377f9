//go:build !(darwin || freebsd || linux)

package grammar

// DefaultOpener fails on this platform; link the grammar statically instead.
var DefaultOpener Opener = unsupportedOpener{}

type unsupportedOpener struct{}

func (unsupportedOpener) Open(string) (Library, error) {
	return nil, ErrUnsupported
}
