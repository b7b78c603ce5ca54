package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"studentdesk/internal/aiwriter"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report form field names rather than Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		if str, ok := fl.Field().Interface().(string); ok {
			return strings.TrimSpace(str) != ""
		}
		return false
	})
	_ = validate.RegisterTranslation(notBlankTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " cannot be blank"
		})
}

// validateForm returns field name to message for every failed rule, or nil.
func validateForm(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}

type studentForm struct {
	Name         string `form:"name" validate:"notblank,max=50"`
	Class        string `form:"class" validate:"notblank,max=20"`
	OriginSchool string `form:"origin_school" validate:"max=50"`
	TargetSchool string `form:"target_school" validate:"max=50"`
	Address      string `form:"address" validate:"max=200"`
}

func studentFormFrom(r *http.Request) studentForm {
	return studentForm{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Class:        strings.TrimSpace(r.FormValue("class")),
		OriginSchool: strings.TrimSpace(r.FormValue("origin_school")),
		TargetSchool: strings.TrimSpace(r.FormValue("target_school")),
		Address:      strings.TrimSpace(r.FormValue("address")),
	}
}

var numberCleaner = strings.NewReplacer(",", "", "%", "", " ", "")

func cleanNumber(s string) string {
	return numberCleaner.Replace(strings.TrimSpace(s))
}

// weeklyDraftFrom reads the grade form into d, keeping the uploaded document
// fields that the form does not carry.
func weeklyDraftFrom(r *http.Request, d WeeklyDraft) WeeklyDraft {
	d.Period = strings.TrimSpace(r.FormValue("period"))
	d.Homework = cleanNumber(r.FormValue("homework"))
	d.Assignment = strings.TrimSpace(r.FormValue("assignment"))
	d.WeeklyScore = cleanNumber(r.FormValue("weekly_score"))
	d.WeeklyAverage = cleanNumber(r.FormValue("weekly_average"))
	d.WeeklyWrong = strings.TrimSpace(r.FormValue("weekly_wrong"))
	d.WeeklyNote = r.FormValue("weekly_note")
	d.AchievementScore = cleanNumber(r.FormValue("achievement_score"))
	d.AchievementAverage = cleanNumber(r.FormValue("achievement_average"))
	d.AchievementWrong = strings.TrimSpace(r.FormValue("achievement_wrong"))
	d.AchievementNote = r.FormValue("achievement_note")
	d.AnalysisCategory = r.FormValue("analysis_category")
	d.Audience = string(aiwriter.ParseAudience(r.FormValue("audience")))
	d.Analysis = r.FormValue("analysis")
	return d
}

// unusableAI reports whether s is AI output that must not be stored: a failure
// string or the missing-input notice.
func unusableAI(s string) bool {
	return aiwriter.IsFailure(s) || strings.TrimSpace(s) == aiwriter.MissingInputMessage
}

// failedAIFields lists the draft fields that still hold unusable AI output.
func (d WeeklyDraft) failedAIFields() []string {
	var out []string
	for name, v := range map[string]string{
		"weekly_note":      d.WeeklyNote,
		"achievement_note": d.AchievementNote,
		"analysis":         d.Analysis,
	} {
		if unusableAI(v) {
			out = append(out, name)
		}
	}
	return out
}
