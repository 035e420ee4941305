// Package attachment defines the attachments of a transaction and the storage
// they are fetched from.
//
// An attachment is a zip archive identified by the digest of its bytes. A
// transaction only refers to attachments by digest, and the resolution of a
// transaction fails if one of them is missing from the storage.
package attachment

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"go.dedis.ch/ledgerkit/crypto"
	"golang.org/x/xerrors"
)

// Attachment is an immutable archive referenced by transactions.
type Attachment interface {
	// GetID returns the digest of the archive.
	GetID() crypto.Digest

	// Open returns a reader of the raw archive.
	Open() io.Reader

	// ExtractFile returns the content of the file at the path inside the
	// archive. The path is matched case-insensitively.
	ExtractFile(path string) ([]byte, error)
}

// Storage is the interface of the attachment storage.
type Storage interface {
	// OpenAttachment returns the attachment with the digest. It returns a
	// NotFoundError if the attachment is unknown.
	OpenAttachment(id crypto.Digest) (Attachment, error)

	// ImportAttachment stores the archive and returns its digest.
	ImportAttachment(data []byte) (crypto.Digest, error)
}

// NotFoundError is returned when an attachment is missing from the storage.
type NotFoundError struct {
	ID crypto.Digest
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("attachment %v not found", e.ID)
}

// IsNotFound returns true if the error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return xerrors.As(err, &nf)
}

// FileNotFoundError is returned when a path is missing from an archive.
type FileNotFoundError struct {
	Path string
}

func (e FileNotFoundError) Error() string {
	return fmt.Sprintf("file '%s' not found in the archive", e.Path)
}

// archive is an attachment backed by the bytes of a zip archive.
//
// - implements attachment.Attachment
type archive struct {
	id   crypto.Digest
	data []byte
}

// NewAttachment returns an attachment for the zip archive. It returns an error
// if the data is not a valid archive.
func NewAttachment(f crypto.HashFactory, data []byte) (Attachment, error) {
	_, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, xerrors.Errorf("invalid archive: %v", err)
	}

	id, err := crypto.NewDigest(f, data)
	if err != nil {
		return nil, xerrors.Errorf("couldn't compute id: %v", err)
	}

	a := archive{
		id:   id,
		data: append([]byte{}, data...),
	}

	return a, nil
}

// GetID implements attachment.Attachment.
func (a archive) GetID() crypto.Digest {
	return a.id
}

// Open implements attachment.Attachment.
func (a archive) Open() io.Reader {
	return bytes.NewReader(a.data)
}

// ExtractFile implements attachment.Attachment.
func (a archive) ExtractFile(path string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(a.data), int64(len(a.data)))
	if err != nil {
		return nil, xerrors.Errorf("invalid archive: %v", err)
	}

	path = normalize(path)

	for _, file := range reader.File {
		if normalize(file.Name) != path {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, xerrors.Errorf("couldn't open '%s': %v", file.Name, err)
		}

		defer rc.Close()

		content, err := ioutil.ReadAll(rc)
		if err != nil {
			return nil, xerrors.Errorf("couldn't read '%s': %v", file.Name, err)
		}

		return content, nil
	}

	return nil, FileNotFoundError{Path: path}
}

func normalize(path string) string {
	return strings.ToLower(strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/"))
}
