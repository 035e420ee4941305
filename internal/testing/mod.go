// Package testing provides helpers shared by the unit tests of the module.
package testing

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// MakeZip returns the bytes of a zip archive populated with the files, given
// as pairs of name and content.
func MakeZip(t *testing.T, files map[string]string) []byte {
	buf := new(bytes.Buffer)

	w := zip.NewWriter(buf)

	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)

		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}
