package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrTeacherOnly     ErrCode = "TEACHER_ACCESS_ONLY"
	ErrStudentOnly     ErrCode = "STUDENT_ACCESS_ONLY"
	ErrRequiresSeb     ErrCode = "REQUIRES_SEB"
	ErrDeadlinePassed  ErrCode = "DEADLINE_PASSED"
	ErrAttemptExpired  ErrCode = "TIME_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrExamNotFound     ErrCode = "EXAM_NOT_FOUND"
	ErrQuestionNotFound ErrCode = "QUESTION_NOT_FOUND"
	ErrResultNotFound   ErrCode = "RESULT_NOT_FOUND"

	// ─── Exam assembly ─────────────────────────────────────────────────
	ErrNoQuestionsSelected ErrCode = "NO_QUESTIONS_SELECTED"
	ErrInsufficientBank    ErrCode = "INSUFFICIENT_BANK_QUESTIONS"

	// ─── Optical scanning ──────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrFormNotDetected ErrCode = "FORM_NOT_DETECTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrTeacherOnly:
		return "This resource is restricted to teachers."
	case ErrStudentOnly:
		return "This resource is restricted to students."
	case ErrRequiresSeb:
		return "This exam can only be taken in the Safe Exam Browser."
	case ErrDeadlinePassed:
		return "The deadline for this exam has passed."
	case ErrAttemptExpired:
		return "The time allowed for this exam attempt has run out."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrExamNotFound:
		return "Exam not found."
	case ErrQuestionNotFound:
		return "Question not found."
	case ErrResultNotFound:
		return "No result recorded for this exam."

	// ─── Exam assembly ─────────────────────────────────────────────────
	case ErrNoQuestionsSelected:
		return "No questions were selected."
	case ErrInsufficientBank:
		return "The question bank does not hold enough questions for the requested sample."

	// ─── Optical scanning ──────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "The file type is not supported."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."
	case ErrFormNotDetected:
		return "No answer form could be detected in the image."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
