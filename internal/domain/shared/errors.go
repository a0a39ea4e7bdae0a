package shared

import "errors"

// ErrorKind is the machine-readable name of a caller-facing ledger failure.
type ErrorKind string

const (
	KindDuplicateCode      ErrorKind = "DUPLICATE_CODE"
	KindDuplicateReference ErrorKind = "DUPLICATE_REFERENCE"
	KindUnknownClass       ErrorKind = "UNKNOWN_CLASS"
	KindUnknownAccount     ErrorKind = "UNKNOWN_ACCOUNT"
	KindInsufficientLines  ErrorKind = "INSUFFICIENT_LINES"
	KindNegativeAmount     ErrorKind = "NEGATIVE_AMOUNT"
	KindInvalidAmount      ErrorKind = "INVALID_AMOUNT"
	KindMixedLine          ErrorKind = "MIXED_LINE"
	KindUnbalancedEntry    ErrorKind = "UNBALANCED_ENTRY"
	KindInvalidDate        ErrorKind = "INVALID_DATE"
	KindRequiredField      ErrorKind = "REQUIRED_FIELD"
	KindAccountInUse       ErrorKind = "ACCOUNT_IN_USE"
	KindEntryPosted        ErrorKind = "ENTRY_POSTED"
	KindAlreadyPosted      ErrorKind = "ALREADY_POSTED"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindInvalidRequest     ErrorKind = "INVALID_REQUEST"
	KindInternal           ErrorKind = "INTERNAL"
)

// KindedError is implemented by every business error of the ledger.
type KindedError interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first KindedError in err's chain,
// or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ke KindedError
	if errors.As(err, &ke) {
		return ke.Kind()
	}
	return KindInternal
}

// IsBusiness reports whether err is an expected, caller-facing outcome rather than a fault.
func IsBusiness(err error) bool {
	k := KindOf(err)
	return k != "" && k != KindInternal
}

// Category groups kinds by the action the caller has to take.
type Category string

const (
	CategoryConflict   Category = "CONFLICT"
	CategoryReference  Category = "REFERENCE"
	CategoryValidation Category = "VALIDATION"
	CategoryState      Category = "STATE"
	CategoryNotFound   Category = "NOT_FOUND"
	CategoryInternal   Category = "INTERNAL"
)

// CategoryOf classifies a kind.
func CategoryOf(kind ErrorKind) Category {
	switch kind {
	case KindDuplicateCode, KindDuplicateReference:
		return CategoryConflict
	case KindUnknownClass, KindUnknownAccount:
		return CategoryReference
	case KindInsufficientLines, KindNegativeAmount, KindInvalidAmount, KindMixedLine, KindUnbalancedEntry,
		KindInvalidDate, KindRequiredField, KindInvalidRequest:
		return CategoryValidation
	case KindAccountInUse, KindEntryPosted, KindAlreadyPosted:
		return CategoryState
	case KindNotFound:
		return CategoryNotFound
	default:
		return CategoryInternal
	}
}

// NotFoundError is a lookup miss on an identifier.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e NotFoundError) Error() string {
	return e.Resource + " not found: " + e.Key
}

func (e NotFoundError) Kind() ErrorKind { return KindNotFound }

// Is matches any NotFoundError when the target carries no resource.
func (e NotFoundError) Is(target error) bool {
	t, ok := target.(NotFoundError)
	if !ok {
		return false
	}
	if t.Resource == "" {
		return true
	}
	return e.Resource == t.Resource && (t.Key == "" || e.Key == t.Key)
}

// RequiredFieldError reports a missing mandatory field.
type RequiredFieldError struct {
	Field string
}

func (e RequiredFieldError) Error() string   { return e.Field + " is required" }
func (e RequiredFieldError) Kind() ErrorKind { return KindRequiredField }

// InvalidFieldError reports a malformed field value.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e InvalidFieldError) Error() string   { return "invalid " + e.Field + ": " + e.Reason }
func (e InvalidFieldError) Kind() ErrorKind { return KindInvalidRequest }
