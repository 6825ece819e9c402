package resthttp

import (
	"context"
	"encoding/json"
	"time"

	"creditagency/core"

	"github.com/go-resty/resty/v2"
)

// New resty client for endpoint
func New(endpoint string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return resty.New().
		SetBaseURL(endpoint).
		SetHeader("Content-Type", "application/json").
		SetHeader("Charset", "utf-8").
		SetTimeout(timeout)
}

// Request new resty request, the request id carried by ctx is forwarded
func Request(ctx context.Context, client *resty.Client) *resty.Request {
	r := client.R().SetContext(ctx)
	if id := RequestIDFrom(ctx); id != "" {
		r.SetHeader(HeaderKeyRequestID, id)
	}

	return r
}

// HeaderKeyRequestID request id header key
const HeaderKeyRequestID = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID ctx carrying the request id to forward
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom request id carried by ctx
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type errorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// ParseResponse decode a successful body into obj, error bodies into *core.CodedError
func ParseResponse(r *resty.Response, obj interface{}) error {
	if !r.IsSuccess() {
		var body errorBody
		if err := json.Unmarshal(r.Body(), &body); err != nil || body.Code == 0 {
			return &core.CodedError{ErrCode: core.ErrUnknown, Msg: r.Status()}
		}

		return &core.CodedError{ErrCode: core.ErrorCode(body.Code), Msg: body.Msg}
	}

	if obj == nil {
		return nil
	}

	return json.Unmarshal(r.Body(), obj)
}
