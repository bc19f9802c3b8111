package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability.
type ErrorCode string

const (
	// Descriptor errors.

	// CodeResourceExhausted indicates no free descriptor or backend handle slot.
	CodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"

	// CodeInvalidDescriptor indicates a descriptor outside the table bounds.
	CodeInvalidDescriptor ErrorCode = "INVALID_DESCRIPTOR"

	// CodeNotOpen indicates an operation on an unbound descriptor or a closed cursor.
	CodeNotOpen ErrorCode = "NOT_OPEN"

	// Routing and registry errors.

	// CodeNoMount indicates no mountpoint prefix matches the given path.
	CodeNoMount ErrorCode = "NO_MOUNT"

	// CodeAlreadyMounted indicates a mountpoint with the same path is registered.
	CodeAlreadyMounted ErrorCode = "ALREADY_MOUNTED"

	// CodeNotFound indicates a mountpoint, directory or fstab entry does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConflict indicates a slot or resource is in a state that forbids the operation.
	CodeConflict ErrorCode = "CONFLICT"

	// Backend errors.

	// CodeBackendInitFailed indicates a backend failed to initialise during mount.
	CodeBackendInitFailed ErrorCode = "BACKEND_INIT_FAILED"

	// CodeBackendDoneFailed indicates a backend failed to shut down during unmount.
	CodeBackendDoneFailed ErrorCode = "BACKEND_DONE_FAILED"

	// CodeBackendOpenFailed indicates a backend refused to open a path.
	CodeBackendOpenFailed ErrorCode = "BACKEND_OPEN_FAILED"

	// CodeUnsupported indicates an ioctl command the addressed backend does not implement.
	CodeUnsupported ErrorCode = "UNSUPPORTED"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates an fstab or option value is invalid.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
