package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/Bigdanydan/dj-calendar-pro/internal/model"
	"github.com/go-playground/validator/v10"
)

// Fields is a request body decoded one level deep, keyed by JSON name.
type Fields map[string]json.RawMessage

// stringFields lists each free-text JSON key and the event field it sets.
var stringFields = []struct {
	key   string
	field func(*model.Event) *string
}{
	{"title", func(e *model.Event) *string { return &e.Title }},
	{"date", func(e *model.Event) *string { return &e.Date }},
	{"startTime", func(e *model.Event) *string { return &e.StartTime }},
	{"endTime", func(e *model.Event) *string { return &e.EndTime }},
	{"venueName", func(e *model.Event) *string { return &e.VenueName }},
	{"venueAddress", func(e *model.Event) *string { return &e.VenueAddress }},
	{"currency", func(e *model.Event) *string { return &e.Currency }},
	{"status", func(e *model.Event) *string { return &e.Status }},
	{"type", func(e *model.Event) *string { return &e.Type }},
	{"notes", func(e *model.Event) *string { return &e.Notes }},
	{"techEquipment", func(e *model.Event) *string { return &e.TechEquipment }},
	{"techSetup", func(e *model.Event) *string { return &e.TechSetup }},
	{"techPlaylist", func(e *model.Event) *string { return &e.TechPlaylist }},
	{"techNotes", func(e *model.Event) *string { return &e.TechNotes }},
}

var jsonNull = []byte("null")

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// applyFields copies every recognised key of f onto e. Keys that are absent
// leave e untouched; unknown keys (including id and createdAt) are ignored.
func applyFields(e *model.Event, f Fields) error {
	for _, sf := range stringFields {
		raw, ok := f[sf.key]
		if !ok {
			continue
		}
		s, err := coerceString(sf.key, raw)
		if err != nil {
			return err
		}
		*sf.field(e) = s
	}

	if raw, ok := f["fee"]; ok {
		fee, err := coerceFee(raw)
		if err != nil {
			return err
		}
		e.Fee = fee
	}

	if raw, ok := f["techSetupTime"]; ok {
		minutes, err := coerceSetupTime(raw)
		if err != nil {
			return err
		}
		e.TechSetupTime = minutes
	}
	return nil
}

func coerceString(key string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &model.ValidationError{Field: key, Reason: "must be a string"}
	}
	return s, nil
}

// coerceFee accepts a JSON number or a string holding one.
func coerceFee(raw json.RawMessage) (float64, error) {
	invalid := &model.ValidationError{Field: "fee", Reason: "must be a number"}
	if isNull(raw) {
		return 0, invalid
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, invalid
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, invalid
	}
	return n, nil
}

// coerceSetupTime maps null, "" and "null" to absent and anything else to a
// whole number of minutes.
func coerceSetupTime(raw json.RawMessage) (*int, error) {
	invalid := &model.ValidationError{Field: "techSetupTime", Reason: "must be a whole number of minutes"}
	if isNull(raw) {
		return nil, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return nil, invalid
		}
		v := int(n)
		return &v, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, invalid
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, invalid
	}
	m := int(v)
	return &m, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateEvent checks the typed event against the rules on model.Event.
func validateEvent(e *model.Event) error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &model.ValidationError{Field: fe.Field(), Reason: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		switch fe.Param() {
		case "2006-01-02":
			return "must be a date formatted YYYY-MM-DD"
		case "15:04":
			return "must be a time formatted HH:MM"
		}
		return "must match " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag()
}
