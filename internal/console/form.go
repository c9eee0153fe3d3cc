package console

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MorseWayne/stock_console/internal/domain"
)

// ProductForm 新建/编辑商品表单，ID 为空表示新建
type ProductForm struct {
	ID              *int64
	Name            string  `validate:"required"`
	Category        string  `validate:"required"`
	UnitPrice       float64 `validate:"gte=0"`
	QuantityInStock int     `validate:"gte=0"`
	ExpirationDate  string  `validate:"omitempty,datetime=2006-01-02"`
}

// FormFromProduct 用已有商品填充编辑表单
func FormFromProduct(p domain.Product) ProductForm {
	form := ProductForm{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		UnitPrice:       p.UnitPrice,
		QuantityInStock: p.QuantityInStock,
	}
	if p.ExpirationDate != nil {
		form.ExpirationDate = *p.ExpirationDate
	}
	return form
}

// Product 将表单转换为领域模型
func (f ProductForm) Product() domain.Product {
	return domain.Product{
		ID:              f.ID,
		Name:            f.Name,
		Category:        f.Category,
		UnitPrice:       f.UnitPrice,
		QuantityInStock: f.QuantityInStock,
		ExpirationDate:  domain.StringPtr(f.ExpirationDate),
	}
}

// FormErrors 字段名到错误信息的映射
type FormErrors map[string]string

func (e FormErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return "invalid product: " + strings.Join(msgs, "; ")
}

func (e FormErrors) Unwrap() error {
	return ErrValidation
}

var fieldMessages = map[string]string{
	"Name":            "Name is required",
	"Category":        "Category is required",
	"UnitPrice":       "Price must be ≥ 0",
	"QuantityInStock": "Quantity must be ≥ 0",
	"ExpirationDate":  "Expiration date must be YYYY-MM-DD",
}

// FormValidator 表单校验器，只做字段级的输入清洗和校验
type FormValidator struct {
	validate *validator.Validate
}

// NewFormValidator 创建表单校验器
func NewFormValidator() *FormValidator {
	return &FormValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate 清洗表单（去除首尾空白）并校验，失败时返回 FormErrors
func (v *FormValidator) Validate(form ProductForm) (ProductForm, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Category = strings.TrimSpace(form.Category)
	form.ExpirationDate = strings.TrimSpace(form.ExpirationDate)

	err := v.validate.Struct(form)
	if err == nil {
		return form, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return form, fmt.Errorf("validate product form: %w", err)
	}
	out := FormErrors{}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		out[fe.Field()] = msg
	}
	return form, out
}

// ParseQuantity 解析用户输入的库存数量：去除空白后必须是非负十进制整数
func ParseQuantity(input string) (int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, ErrInvalidQuantity
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, input)
	}
	return n, nil
}

// ParsePrice 解析用户输入的单价
func ParsePrice(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, ErrInvalidPrice
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, input)
	}
	return v, nil
}
