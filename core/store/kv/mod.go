// Package kv defines the abstraction for a key/value database.
//
// The package also implements a default database implementation that is using
// bbolt as the engine (https://github.com/etcd-io/bbolt). The ledger stores use
// one bucket per kind of object, keyed by digest.
package kv

// Bucket is a general interface to operate on a database bucket.
type Bucket interface {
	// Get reads the key from the bucket and returns the value, or nil if the
	// key does not exist.
	Get(key []byte) []byte

	// Set assigns the value to the provided key.
	Set(key, value []byte) error

	// Delete deletes the key from the bucket.
	Delete(key []byte) error

	// ForEach iterates over all the items in the bucket in a unspecified order.
	// The iteration stops when the callback returns an error.
	ForEach(func(k, v []byte) error) error

	// Scan iterates over every key that matches the prefix in an order
	// determined by the implementation. The iteration stops when the callback
	// returns an error.
	Scan(prefix []byte, fn func(k, v []byte) error) error
}

// DB is a general interface to operate over a key/value database.
type DB interface {
	// View executes the read-only function on the bucket. It returns
	// ErrBucketNotFound if the bucket does not exist yet.
	View(bucket []byte, fn func(Bucket) error) error

	// Update executes the function on the bucket in a writable transaction.
	// The bucket is created if necessary.
	Update(bucket []byte, fn func(Bucket) error) error

	// Close closes the database and free the resources.
	Close() error
}
