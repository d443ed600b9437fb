package enrollment

import (
	"reflect"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mehy12/edumate/core"
)

var (
	scheduleDatesTag  = "scheduledates"
	scheduleDatesText = "{0} must be a list of session_index/date entries"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(scheduleDatesTag, scheduleDatesValidation)
	core.RegisterCustomTranslation(validate, translator, scheduleDatesTag, scheduleDatesText)
}

// scheduleDatesValidation requires the list to be present; an empty list is fine.
func scheduleDatesValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	return field.Kind() == reflect.Slice && !field.IsNil()
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	ne.Topic = core.CleanString(ne.Topic)
	ne.LearningSpeed = string(ParseLearningSpeed(ne.LearningSpeed))
	return validate.Struct(ne)
}

func (sr *ScheduleRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}
