package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Question module errors
// 12000-12999: Submission & Judge module errors
// 13000-13999: Plagiarism module errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	Unauthorized        ErrorCode = 10004
	Forbidden           ErrorCode = 10005
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Database errors (10100-10199)
	DatabaseError       ErrorCode = 10100
	RecordNotFound      ErrorCode = 10101
	RecordAlreadyExists ErrorCode = 10102
	TransactionFailed   ErrorCode = 10103

	// Cache errors (10200-10299)
	CacheError     ErrorCode = 10200
	CacheSetFailed ErrorCode = 10201

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	RequiredFieldEmpty ErrorCode = 10302

	// ========== Question Module Errors (11000-11999) ==========

	// Question basic (11000-11099)
	QuestionNotFound     ErrorCode = 11000
	QuestionCreateFailed ErrorCode = 11001
	QuestionUpdateFailed ErrorCode = 11002
	QuestionDeleteFailed ErrorCode = 11003

	// Test cases (11100-11199)
	TestCaseNotFound ErrorCode = 11100
	TestCaseInvalid  ErrorCode = 11101

	// ========== Submission & Judge Module Errors (12000-12999) ==========

	// Submission (12000-12099)
	SubmissionNotFound     ErrorCode = 12000
	SubmissionCreateFailed ErrorCode = 12001
	SubmissionUpdateFailed ErrorCode = 12002
	CodeTooLarge           ErrorCode = 12003
	LanguageNotSupported   ErrorCode = 12004

	// Security validation (12100-12199)
	ForbiddenPattern ErrorCode = 12100

	// Judge (12200-12299)
	JudgeSystemError  ErrorCode = 12200
	CompilationError  ErrorCode = 12201
	RuntimeError      ErrorCode = 12202
	TimeLimitExceeded ErrorCode = 12203
	SandboxSetupError ErrorCode = 12204

	// ========== Plagiarism Module Errors (13000-13999) ==========

	PlagiarismScanFailed ErrorCode = 13000
	InvalidThreshold     ErrorCode = 13001
	NotEnoughSubmissions ErrorCode = 13002
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	Unauthorized:        "Unauthorized access",
	Forbidden:           "Access forbidden",
	TooManyRequests:     "Too many requests, please try again later",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",

	// Database
	DatabaseError:       "Database operation failed",
	RecordNotFound:      "Record not found in database",
	RecordAlreadyExists: "Record already exists",
	TransactionFailed:   "Database transaction failed",

	// Cache
	CacheError:     "Cache operation failed",
	CacheSetFailed: "Failed to set cache",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	RequiredFieldEmpty: "Required field is empty",

	// Question
	QuestionNotFound:     "Coding question not found",
	QuestionCreateFailed: "Failed to create coding question",
	QuestionUpdateFailed: "Failed to update coding question",
	QuestionDeleteFailed: "Failed to delete coding question",
	TestCaseNotFound:     "Test case not found",
	TestCaseInvalid:      "Invalid test case format",

	// Submission
	SubmissionNotFound:     "Submission not found",
	SubmissionCreateFailed: "Failed to create submission",
	SubmissionUpdateFailed: "Failed to update submission",
	CodeTooLarge:           "Code is too large",
	LanguageNotSupported:   "Programming language not supported",

	// Security
	ForbiddenPattern: "Code contains forbidden patterns",

	// Judge
	JudgeSystemError:  "Judge system error",
	CompilationError:  "Compilation error",
	RuntimeError:      "Runtime error",
	TimeLimitExceeded: "Time limit exceeded",
	SandboxSetupError: "Sandbox setup failed",

	// Plagiarism
	PlagiarismScanFailed: "Plagiarism scan failed",
	InvalidThreshold:     "Similarity threshold must be between 0 and 100",
	NotEnoughSubmissions: "Not enough submissions to compare",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == Unauthorized:
		return 401
	case c == Forbidden, c == ForbiddenPattern:
		return 403
	case c == NotFound, c == QuestionNotFound, c == SubmissionNotFound:
		return 404
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams, c == LanguageNotSupported, c == CodeTooLarge, c == InvalidThreshold:
		return 400
	default:
		return 500
	}
}
