package llm

import "errors"

// Reason classifies why keyword generation failed.
type Reason string

const (
	ReasonMissingCredentials    Reason = "missing_credentials"
	ReasonNoContent             Reason = "no_content"
	ReasonUpstreamHTTPError     Reason = "upstream_http_error"
	ReasonEmptyCompletion       Reason = "empty_completion"
	ReasonTransportOrParseError Reason = "transport_or_parse_error"
	ReasonUnexpected            Reason = "unexpected"
)

const (
	MessageMissingCredentials = "OpenRouter API key not configured. Please configure it in Studio Secrets or environment variables."
	MessageNoContent          = "No content found in the document."
	MessageEmptyCompletion    = "No keywords were generated from the API response."
	unknownErrorText          = "Unknown error"
)

// Failure is the only error type returned by KeywordGenerator.Generate.
type Failure struct {
	Reason     Reason
	Message    string
	StatusCode int
	cause      error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.cause
}

func newFailure(reason Reason, message string, cause error) *Failure {
	return &Failure{Reason: reason, Message: message, cause: cause}
}

// NoContentFailure reports that there was nothing to analyse.
func NoContentFailure() *Failure {
	return newFailure(ReasonNoContent, MessageNoContent, nil)
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if err != nil && errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
