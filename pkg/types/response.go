package types

// SuccessEnvelope wraps every 2xx JSON body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public part of a failed request. RequestID matches the
// X-Request-Id response header so support can find the log entry.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func Success(data any) SuccessEnvelope { return SuccessEnvelope{Data: data} }

func Failure(e APIError) ErrorEnvelope { return ErrorEnvelope{Error: e} }
