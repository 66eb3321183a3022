package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pedrovi35/EduSync-Pro/internal/apperr"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

const maxBodyBytes = 1 << 20

// envelope is the body of every successful response.
type envelope struct {
	Data    any          `json:"data,omitempty"`
	Outcome *outcomeView `json:"outcome,omitempty"`
}

type errorBody struct {
	Error *apperr.AppError `json:"error"`
}

type levelUpView struct {
	Level int    `json:"level"`
	Rank  string `json:"rank"`
}

type unlockView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type outcomeView struct {
	ID        string        `json:"id,omitempty"`
	Message   string        `json:"message,omitempty"`
	XPAwarded int           `json:"xp_awarded,omitempty"`
	LevelUps  []levelUpView `json:"level_ups,omitempty"`
	Unlocks   []unlockView  `json:"unlocks,omitempty"`
}

func newOutcomeView(out session.Outcome) *outcomeView {
	v := &outcomeView{ID: out.ID, Message: out.Message, XPAwarded: out.XPAwarded}
	for _, up := range out.LevelUps {
		v.LevelUps = append(v.LevelUps, levelUpView{Level: up.To, Rank: up.Name})
	}
	for _, a := range out.Unlocks {
		v.Unlocks = append(v.Unlocks, unlockView{ID: a.ID, Name: a.Name, Icon: a.Icon})
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err onto the apperr taxonomy. Foreign errors are logged
// and reported as INTERNAL without their text.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.GetAppError(err)
	if appErr == nil {
		s.logger.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		appErr = apperr.NewInternalError("internal error", err)
	}
	writeJSON(w, apperr.HTTPStatus(appErr), errorBody{Error: appErr})
}

// decode reads a JSON body into dst and runs the struct validators.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.NewValidationError("invalid request body: " + err.Error())
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fe.Field() + " is required"
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			msg = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
		msgs = append(msgs, msg)
		fields[fe.Field()] = fe.Tag()
	}
	return apperr.NewValidationError(strings.Join(msgs, "; ")).WithDetails(fields)
}
