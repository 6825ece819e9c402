package render

import (
	"os"
	"strconv"
)

// ResponseErrorMessageAsHint render internal error messages instead of a generic one
var ResponseErrorMessageAsHint bool

func init() {
	v := os.Getenv("RESPONSE_ERROR_MESSAGE_AS_HINT")
	ResponseErrorMessageAsHint, _ = strconv.ParseBool(v)
}

type errorResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
