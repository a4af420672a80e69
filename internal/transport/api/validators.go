package api

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxMoney первое значение, которое уже не помещается в NUMERIC(19,2).
var maxMoney = decimal.New(1, 17) //nolint:mnd

// validateMaxBytes в отличии от тэга max который проверяет длину рун, - проверят длину байт в поле.
func validateMaxBytes(fl validator.FieldLevel) bool {
	param := fl.Param() // получаем значение из тега
	maxBytes, err := strconv.Atoi(param)
	if err != nil {
		return false
	}

	// нужно убедится что значение поля - строка.
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return len(str) <= maxBytes
}

// validateMoney проверяет, что сумма по модулю помещается в колонку баланса. Знак и кол-во знаков после запятой
// проверяются в сервисе.
func validateMoney(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	amount, err := decimal.NewFromString(str)
	if err != nil {
		return false
	}
	if !domain.AmountExponentInRange(amount) {
		return false
	}
	return amount.Abs().LessThan(maxMoney)
}

// decimalTypeFunc отдает валидатору decimal.Decimal в виде строки, иначе теги на полях-структурах не проверяются.
// Сумма с экспонентой вне границ не форматируется: String() раскладывает ее до экспоненты. Вместо нее отдается
// пустая строка, которую validateMoney отклоняет.
func decimalTypeFunc(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	if !domain.AmountExponentInRange(d) {
		return ""
	}
	return d.String()
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validator registration: unexpected engine %T", binding.Validator.Engine())
	}
	v.RegisterCustomTypeFunc(decimalTypeFunc, decimal.Decimal{})
	if err := v.RegisterValidation("max_bytes", validateMaxBytes); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	if err := v.RegisterValidation("money", validateMoney); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	return nil
}
