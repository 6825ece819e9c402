package render

import (
	"encoding/json"
	"net/http"
	"strconv"

	"creditagency/core"
	"creditagency/handler/codes"

	"github.com/sirupsen/logrus"
	"github.com/twitchtv/twirp"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	Write(w, v)
}

// Write encode v as json, headers must be written already
func Write(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Errorln("render json")
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(t)); err != nil {
		logrus.WithError(err).Errorln("render text")
	}
}

// Error write err as {code, msg} with the http status of its twirp code
func Error(w http.ResponseWriter, err error) {
	twerr := codes.From(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(twirp.ServerHTTPStatusFromErrorCode(twerr.Code()))

	resp := errorResponse{
		Code: codes.Get(twerr),
		Msg:  twerr.Msg(),
	}
	if twerr.Code() == twirp.Internal && !ResponseErrorMessageAsHint {
		resp.Msg = "internal error"
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Errorln("render error")
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.InvalidArgumentError("request", err.Error()).
		WithMeta(codes.CustomCodeKey, core.ErrInvalidArgument.String()))
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, twirp.NotFoundError(err.Error()).
		WithMeta(codes.CustomCodeKey, strconv.Itoa(http.StatusNotFound)))
}
