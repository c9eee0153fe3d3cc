package console

import (
	"errors"
	"fmt"
)

// 错误分类：校验错误在发送请求前返回；请求失败保留当前视图；过期响应不是错误。
var (
	ErrValidation    = errors.New("validation failed")
	ErrRequestFailed = errors.New("request failed")
)

// 具体的校验错误
var (
	ErrNoNextPage        = fmt.Errorf("%w: no next page", ErrValidation)
	ErrNoPrevPage        = fmt.Errorf("%w: already on the first page", ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be a non-negative integer", ErrValidation)
	ErrInvalidPrice      = fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	ErrInvalidTransition = fmt.Errorf("%w: stock transition not allowed", ErrValidation)
	ErrMissingID         = fmt.Errorf("%w: product has no id", ErrValidation)
)
