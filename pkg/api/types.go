package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bookclub/pkg/checkpoint"

	"github.com/go-playground/validator/v10"
)

const maxRequestBytes = 1 << 20

var validate = validator.New()

// SaveRequest is the body of POST /checkpoint-status/save.
type SaveRequest struct {
	CheckpointID string          `json:"checkpointId" validate:"required"`
	Updates      []UpdateRequest `json:"updates" validate:"required,dive"`
}

type UpdateRequest struct {
	MemberID         string `json:"memberId" validate:"required"`
	CompletionStatus string `json:"completionStatus"`
	UpdatedDate      string `json:"updatedDate"`
}

type SaveResponse struct {
	OK      bool `json:"ok"`
	Updated int  `json:"updated"`
	Added   int  `json:"added"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// decodeSaveRequest reads and validates a save body. Every failure wraps
// checkpoint.ErrInvalidRequest.
func decodeSaveRequest(w http.ResponseWriter, r *http.Request) (*SaveRequest, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()

	var req SaveRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty request body", checkpoint.ErrInvalidRequest)
		}
		return nil, fmt.Errorf("%w: %v", checkpoint.ErrInvalidRequest, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: unexpected data after request body", checkpoint.ErrInvalidRequest)
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("%w: %s failed on %q", checkpoint.ErrInvalidRequest, verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("%w: %v", checkpoint.ErrInvalidRequest, err)
	}
	return &req, nil
}

func (req *SaveRequest) updates() []checkpoint.Update {
	updates := make([]checkpoint.Update, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = checkpoint.Update{
			MemberID:         u.MemberID,
			CompletionStatus: u.CompletionStatus,
			UpdatedDate:      u.UpdatedDate,
		}
	}
	return updates
}
