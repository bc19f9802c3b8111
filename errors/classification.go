package errors

// ErrorClassification indicates whether an error may succeed if the
// operation is attempted again later.
type ErrorClassification string

const (
	// ClassificationRetryable indicates a transient condition, such as a full
	// descriptor table that another goroutine may drain.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates failures that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry should be attempted.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps error codes to their default classification.
// Codes not listed are permanent.
var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeResourceExhausted: ClassificationRetryable,
}

func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
