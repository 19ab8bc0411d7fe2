package api

import (
	"github.com/athlink/cli/pkg/client"
	apierrors "github.com/athlink/cli/pkg/errors"
	"github.com/athlink/cli/pkg/logger"
	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// API issues the Athlink REST calls
type API struct {
	client *client.Client
}

// New creates an API bound to c
func New(c *client.Client) *API {
	return &API{client: c}
}

// Envelope is the normalized result of every call.
// Expected failures never surface as Go errors: they come back with Success false.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	StatusCode int                 `json:"-"`
	Failure    *apierrors.CLIError `json:"-"`
}

// Err returns nil on success, the categorized failure otherwise
func (e Envelope[T]) Err() error {
	if e.Success {
		return nil
	}
	if e.Failure != nil {
		return e.Failure
	}
	return apierrors.BusinessError(e.FailureMessage(), e.StatusCode)
}

// Result unpacks the envelope into the usual (value, error) pair
func (e Envelope[T]) Result() (T, error) {
	return e.Data, e.Err()
}

// FailureMessage is the text to show the user for a failed call
func (e Envelope[T]) FailureMessage() string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	default:
		return apierrors.FallbackMessage
	}
}

func failed[T any](statusCode int, cliErr *apierrors.CLIError) Envelope[T] {
	return Envelope[T]{
		Success:    false,
		Error:      cliErr.Message,
		StatusCode: statusCode,
		Failure:    cliErr,
	}
}

func send[T any](req *resty.Request, method, path string) Envelope[T] {
	resp, err := req.Execute(method, path)
	if err != nil {
		logger.Debug("Request failed", "method", method, "path", path, "error", err)
		return failed[T](0, apierrors.CategorizeError(err))
	}
	return decodeEnvelope[T](resp.StatusCode(), resp.Body())
}

func decodeEnvelope[T any](statusCode int, body []byte) Envelope[T] {
	ok := statusCode >= 200 && statusCode < 300

	var probe struct {
		Success *bool `json:"success"`
	}
	if len(body) > 0 && json.Unmarshal(body, &probe) == nil && probe.Success != nil {
		var env Envelope[T]
		if err := json.Unmarshal(body, &env); err != nil {
			return failed[T](statusCode, apierrors.InvalidFormatError(err))
		}
		env.StatusCode = statusCode
		if env.Success && ok {
			return env
		}

		env.Success = false
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		switch {
		case msg != "" && statusCode != 401 && statusCode != 403 && statusCode < 500:
			env.Failure = apierrors.BusinessError(msg, statusCode)
		case ok:
			env.Failure = apierrors.BusinessError(msg, statusCode)
		default:
			env.Failure = apierrors.FromStatus(statusCode, msg)
		}
		if env.Error == "" {
			env.Error = env.Failure.Message
		}
		return env
	}

	if !ok {
		return failed[T](statusCode, ParseError(statusCode, body))
	}

	var data T
	if len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			return failed[T](statusCode, apierrors.InvalidFormatError(err))
		}
	}
	return Envelope[T]{Success: true, Data: data, StatusCode: statusCode}
}
