package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to their user-facing messages.
// A slice (not a map) because errors.Is() needs chain traversal and the
// first match must win deterministically.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Decoding
	// ===================
	{
		err: ErrTypeMismatch,
		info: ErrorInfo{
			Message: "A value has the wrong type.",
			Action:  "Check the value at the reported path; quote it if it should be text.",
		},
	},
	{
		err: ErrShapeMismatch,
		info: ErrorInfo{
			Message: "A value has the wrong structure.",
			Action:  "Use a mapping or a list at the reported path as the workflow syntax requires.",
		},
	},
	{
		err: ErrNoMatchingShape,
		info: ErrorInfo{
			Message: "A value does not match any of the accepted forms.",
			Action:  "Rewrite the value at the reported path in one of the listed forms.",
		},
	},
	{
		err: ErrUnknownVariant,
		info: ErrorInfo{
			Message: "A keyword is not recognized.",
			Action:  "Use one of the listed keywords.",
		},
	},
	{
		err: ErrUnknownField,
		info: ErrorInfo{
			Message: "The workflow contains a key that is not part of the workflow syntax.",
			Action:  "Remove or rename the key, or run with --unknown-fields lenient.",
		},
	},
	{
		err: ErrMissingRequiredField,
		info: ErrorInfo{
			Message: "A required key is missing.",
			Action:  "Add the key named in the error.",
		},
	},

	// ===================
	// Documents & files
	// ===================
	{
		err: ErrDocumentParse,
		info: ErrorInfo{
			Message: "The file is not valid YAML or JSON.",
			Action:  "Fix the syntax error at the reported line.",
		},
	},
	{
		err: ErrDuplicateKey,
		info: ErrorInfo{
			Message: "A mapping repeats the same key.",
			Action:  "Remove the duplicate key.",
		},
	},
	{
		err:  ErrUnsupportedNode,
		info: ErrorInfo{Message: "The document uses a YAML construct that cannot be decoded."},
	},
	{
		err: ErrWorkflowFileMissing,
		info: ErrorInfo{
			Message: "Workflow file not found.",
			Action:  "Check the path; relative paths are resolved from the current directory.",
		},
	},
	{
		err:  ErrWorkflowLoadFailed,
		info: ErrorInfo{Message: "Workflow file could not be read."},
	},
	{
		err: ErrNoInputFiles,
		info: ErrorInfo{
			Message: "No workflow files were given.",
			Action:  "Pass one or more workflow files, e.g. .github/workflows/ci.yml.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrInvalidPolicy,
		info: ErrorInfo{
			Message: "Unknown-field policy must be strict or lenient.",
			Action:  "Set --unknown-fields or decode.unknown_fields to strict or lenient.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "Output format is not supported.",
			Action:  "Use --output text, json or yaml.",
		},
	},
	{
		err:  ErrCheckFailed,
		info: ErrorInfo{Message: "One or more workflows failed to decode."},
	},
	{
		err:  ErrInterrupted,
		info: ErrorInfo{Message: "The run was interrupted before every file was decoded."},
	},
}

//nolint:gochecknoglobals // Derived once from errorInfoEntries
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Direct sentinels hit the map; wrapped errors fall back to errors.Is().
func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve the issue. The action is empty when
// there is nothing obvious to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
