package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"nameaffirm/internal/verifiedname"
	dErrors "nameaffirm/pkg/domain-errors"
)

// VerifiedNameResponse is the JSON shape of one verified name record.
type VerifiedNameResponse struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	VerifiedName           string    `json:"verified_name"`
	ProfileName            string    `json:"profile_name"`
	VerificationAttemptID  *int64    `json:"verification_attempt_id,omitempty"`
	ProctoredExamAttemptID *int64    `json:"proctored_exam_attempt_id,omitempty"`
	Status                 string    `json:"status"`
	Created                time.Time `json:"created"`
}

func toVerifiedNameResponse(record *verifiedname.VerifiedName) VerifiedNameResponse {
	return VerifiedNameResponse{
		ID:                     record.ID.String(),
		UserID:                 record.UserID,
		VerifiedName:           record.VerifiedName,
		ProfileName:            record.ProfileName,
		VerificationAttemptID:  record.VerificationAttemptID,
		ProctoredExamAttemptID: record.ProctoredExamAttemptID,
		Status:                 string(record.Status),
		Created:                record.Created,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates coded domain errors into HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeMultipleAttemptIDs, dErrors.CodeEmptyString, dErrors.CodeAttemptIDNotGiven:
		status = http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		status = http.StatusUnauthorized
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	}

	message := ""
	if status != http.StatusInternalServerError {
		message = err.Error()
	}
	WriteJSON(w, status, errorResponse{Error: string(code), Message: message})
}
