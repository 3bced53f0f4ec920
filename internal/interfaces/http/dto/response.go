package dto

// Response is the envelope every endpoint answers with
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo carries a machine readable code next to the human message
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}
