package plugins

import "strings"

type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Коды ошибок, которыми пользуются store и api
const (
	ErrRequired        = "required"
	ErrTypeMismatch    = "type_mismatch"
	ErrEnumInvalid     = "enum_invalid"
	ErrUniqueViolation = "unique_violation"
	ErrNotFound        = "not_found"
	ErrReadOnly        = "readonly_field"
	ErrVersionConflict = "version_conflict"
)

func Ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

// ValidationError — нормализованный результат валидации документа.
type ValidationError struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string { return e.Message }

// HasCode: есть ли ошибка с кодом code.
func (e *ValidationError) HasCode(code string) bool {
	for _, fe := range e.Errors {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// ErrorTransformOptions управляет видом сообщений.
type ErrorTransformOptions struct {
	Capitalize bool
	Humanize   bool
	// Transform склеивает сообщения в одно; по умолчанию joinMessages.
	Transform func(messages []string) string
}

type errorTransform struct {
	opts ErrorTransformOptions
}

func NewErrorTransform(opts ErrorTransformOptions) ErrorNormalizer {
	if opts.Transform == nil {
		opts.Transform = joinMessages
	}
	return &errorTransform{opts: opts}
}

func (t *errorTransform) Normalize(errs []FieldError) *ValidationError {
	if len(errs) == 0 {
		return nil
	}
	out := make([]FieldError, 0, len(errs))
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msg := fe.Message
		if t.opts.Humanize && fe.Field != "" {
			msg = humanizePath(msg, fe.Field)
		}
		if t.opts.Capitalize {
			msg = capitalize(msg)
		}
		fe.Message = msg
		out = append(out, fe)
		msgs = append(msgs, msg)
	}
	return &ValidationError{Message: t.opts.Transform(msgs), Errors: out}
}

func joinMessages(messages []string) string {
	if len(messages) == 1 {
		return messages[0]
	}
	return strings.Join(messages, "; ")
}

// humanizePath меняет только упоминание пути: `field` в кавычках,
// а без них первое вхождение. Значение в сообщении не трогаем.
func humanizePath(msg, field string) string {
	if quoted := "`" + field + "`"; strings.Contains(msg, quoted) {
		return strings.Replace(msg, quoted, "`"+Humanize(field)+"`", 1)
	}
	return strings.Replace(msg, field, Humanize(field), 1)
}

// Humanize: "reset_token" / "resetToken" -> "reset token"
func Humanize(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
			prevLower = false
			continue
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteRune(' ')
			}
			b.WriteRune(r + ('a' - 'A'))
			prevLower = false
			continue
		}
		b.WriteRune(r)
		prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
