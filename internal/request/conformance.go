package request

import (
	"net/http"

	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
	validatorErrors "github.com/pb33f/libopenapi-validator/errors"
)

// Violation is one way a live response differs from its documentation. It is
// informational and never changes how the result is classified.
type Violation struct {
	Message  string
	Reason   string
	HowToFix string
}

// Conformance checks live responses against the loaded document.
type Conformance struct {
	validator validator.Validator
}

func NewConformance(doc libopenapi.Document) (*Conformance, error) {
	v, errs := validator.NewValidator(doc)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return &Conformance{validator: v}, nil
}

// CheckRequest validates an outgoing request. It consumes req's body, so req
// must not be the one that gets sent.
func (c *Conformance) CheckRequest(req *http.Request) []Violation {
	valid, errs := c.validator.ValidateHttpRequestSync(req)
	if valid {
		return nil
	}
	return toViolations(errs)
}

// Check validates resp as the answer to req. The response body must be
// readable.
func (c *Conformance) Check(req *http.Request, resp *http.Response) []Violation {
	valid, errs := c.validator.ValidateHttpResponse(req, resp)
	if valid {
		return nil
	}
	return toViolations(errs)
}

func toViolations(errs []*validatorErrors.ValidationError) []Violation {
	var result []Violation
	for _, e := range errs {
		result = append(result, Violation{
			Message:  e.Message,
			Reason:   e.Reason,
			HowToFix: e.HowToFix,
		})
	}
	return result
}
