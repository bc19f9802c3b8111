// Package errors provides the structured error type returned by every layer
// of the virtual filesystem switch.
//
// Each error carries an ErrorCode naming the failure kind (no free
// descriptor, no mountpoint for a path, descriptor not open, ...), a
// human-readable message, optional context metadata and, when wrapping a
// backend failure, the original cause. The type is fully compatible with the
// standard library (errors.Is, errors.As, errors.Unwrap), so callers can still
// test a wrapped backend error against fs.ErrNotExist or io.EOF.
//
// # Quick Start
//
// Creating errors:
//
//	err := errors.New(errors.CodeNoMount, "no mountpoint for path")
//	err := errors.Newf(errors.CodeInvalidDescriptor, "descriptor %d out of range", fd)
//
// Wrapping backend failures:
//
//	f, err := bfs.OpenFile(name, flag, 0o666)
//	if err != nil {
//	    return nil, errors.Wrap(err, errors.CodeBackendOpenFailed, "open failed")
//	}
//
// Inspecting errors:
//
//	if errors.GetCode(err) == errors.CodeResourceExhausted {
//	    // every descriptor slot is bound
//	}
//
// Adding context:
//
//	err = errors.WithContext(err, "path", path)
//
// # Classification
//
// The switch itself never retries. Classification is metadata for callers:
// exhausted descriptor or handle pools are retryable (a slot may be released
// by another goroutine), everything else is permanent.
package errors
