package cart

import (
	"errors"
	"fmt"
)

// 呼び出し側の入力不正。数量が1未満など。
// 変更は適用されず、保存も走らない。
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
