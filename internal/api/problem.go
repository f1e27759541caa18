package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mwantia/docarchive/pkg/apperror"
)

// ContentTypeProblemJSON is the Content-Type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// Problem represents an RFC 7807 "problem details" response. Problems
// lists the individual issues of a rejected upload.
type Problem struct {
	Type     string             `json:"type,omitempty"`
	Title    string             `json:"title"`
	Status   int                `json:"status"`
	Detail   string             `json:"detail,omitempty"`
	Instance string             `json:"instance,omitempty"`
	Problems []apperror.Problem `json:"problems,omitempty"`
}

// WriteProblem writes an RFC 7807 problem response.
func WriteProblem(w http.ResponseWriter, status int, detail string) {
	writeProblem(w, &Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// WriteError maps err to its status code. Internal errors hide their
// detail from the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.StatusCode(err)

	problem := &Problem{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   err.Error(),
		Instance: r.URL.Path,
	}
	if status >= http.StatusInternalServerError {
		problem.Detail = "the request could not be completed"
	}

	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		problem.Detail = verr.Message
		problem.Problems = verr.Problems
	}

	writeProblem(w, problem)
}

func writeProblem(w http.ResponseWriter, problem *Problem) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(problem.Status)
	_ = json.NewEncoder(w).Encode(problem)
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
