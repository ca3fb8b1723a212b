package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"stockcompare/internal/fetcher"
)

// ErrInvalidRequest is wrapped by every request validation failure
var ErrInvalidRequest = errors.New("invalid request")

// Request is the caller's input: four strings, as entered in the web form
type Request struct {
	Stock      string `validate:"required"`
	StartDate  string `validate:"required,datetime=2006-01-02"`
	EndDate    string `validate:"required,datetime=2006-01-02"`
	Prediction string `validate:"required,numeric"`
}

// Params is a validated, parsed Request
type Params struct {
	Query      string
	Start      time.Time
	End        time.Time
	Prediction float64
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse validates the request and converts it into typed parameters.
// All failures wrap ErrInvalidRequest.
func (r Request) Parse() (Params, error) {
	r.Stock = strings.TrimSpace(r.Stock)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
	r.Prediction = strings.TrimSpace(r.Prediction)

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Params{}, fmt.Errorf("%w: %s", ErrInvalidRequest, describe(verrs))
		}
		return Params{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	start, err := fetcher.ParseDay(r.StartDate)
	if err != nil {
		return Params{}, fmt.Errorf("%w: start date: %v", ErrInvalidRequest, err)
	}
	end, err := fetcher.ParseDay(r.EndDate)
	if err != nil {
		return Params{}, fmt.Errorf("%w: end date: %v", ErrInvalidRequest, err)
	}
	if end.Before(start) {
		return Params{}, fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidRequest, r.EndDate, r.StartDate)
	}

	prediction, err := strconv.ParseFloat(r.Prediction, 64)
	if err != nil || math.IsNaN(prediction) || math.IsInf(prediction, 0) {
		return Params{}, fmt.Errorf("%w: prediction %q is not a finite number", ErrInvalidRequest, r.Prediction)
	}

	return Params{
		Query:      r.Stock,
		Start:      start,
		End:        end,
		Prediction: prediction,
	}, nil
}

// describe turns validator failures into one readable message
func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s %q must be a date in YYYY-MM-DD format", field, fe.Value()))
		case "numeric":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a number", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func fieldName(f string) string {
	switch f {
	case "StartDate":
		return "start date"
	case "EndDate":
		return "end date"
	default:
		return strings.ToLower(f)
	}
}
