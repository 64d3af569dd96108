package datatypes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotInteger = errors.New("invalid input (must be integers)")
	ErrOutOfRange = errors.New("invalid input (values must be 0-255)")
)

// ParseByteSequence 解析以空白分隔的十进制整数序列
//
// Newlines count as whitespace. Any token that is not a base-10 integer or that does not
// fit into one byte rejects the whole input; nothing is truncated or wrapped.
// The parsed values are returned alongside the bytes for logging.
func ParseByteSequence(s string) ([]byte, []int, error) {
	fields := strings.Fields(s)
	data := make([]byte, 0, len(fields))
	values := make([]int, 0, len(fields))

	for _, field := range fields {
		v, err := strconv.Atoi(field)
		if errors.Is(err, strconv.ErrRange) {
			return nil, nil, fmt.Errorf("%w: %s", ErrOutOfRange, field)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q", ErrNotInteger, field)
		}
		if v < 0 || v > 255 {
			return nil, nil, fmt.Errorf("%w: %d", ErrOutOfRange, v)
		}
		data = append(data, byte(v))
		values = append(values, v)
	}
	return data, values, nil
}

// FormatValues renders values as a bracketed, comma separated list, e.g. "[10, 20, 30]".
func FormatValues(values []int) string {
	strValues := make([]string, len(values))
	for i, v := range values {
		strValues[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(strValues, ", ") + "]"
}
