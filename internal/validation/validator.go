// Package validation はgo-playground/validatorによるリクエスト検証を提供する。
// 検証失敗はフィールド単位のVALIDATION_ERRORとして返す。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/sitetrack/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Errors はフィールド単位の検証エラーの集合。
type Errors []*model.APIError

// Error はerrorインターフェースを実装する。
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Get はシングルトンのvalidatorを返す。
// フィールド名はjsonタグの名前で報告する。
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct は構造体を検証する。検証に失敗した場合はErrorsを返す。
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{model.NewValidationError("body", err.Error())}
	}

	result := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		result[i] = model.NewValidationError(fe.Field(), translate(fe))
	}
	return result
}

var messages = map[string]string{
	"required": "%sは必須です。",
	"email":    "%sは有効なメールアドレスではありません。",
}

func translate(fe validator.FieldError) string {
	field := fe.Field()
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("%sは%s文字以上で入力してください。", field, fe.Param())
		}
		return fmt.Sprintf("%sは%s以上で入力してください。", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%sは%s文字以下で入力してください。", field, fe.Param())
		}
		return fmt.Sprintf("%sは%s以下で入力してください。", field, fe.Param())
	default:
		return fmt.Sprintf("%sが不正です（%s）。", field, fe.Tag())
	}
}
