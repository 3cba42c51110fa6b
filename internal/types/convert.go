// Package types holds value conversions shared by the storage backends.
package types

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"

	"github.com/dbsmedya/goapriori/internal/itemset"
)

// ErrNullValue is returned when a scanned cell is NULL or empty.
var ErrNullValue = errors.New("null or empty value")

// ToValue converts a scanned database cell into an item value.
// Drivers hand back string, []byte, numeric or time values depending on the
// column type; all of them are rendered as text. The text is kept verbatim so
// that count queries bind exactly what the column stores.
func ToValue(v interface{}) (itemset.Value, error) {
	if v == nil {
		return "", ErrNullValue
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("convert %T to value: %w", v, err)
	}
	if s == "" {
		return "", ErrNullValue
	}
	return itemset.Value(s), nil
}

// ToValues converts a column of scanned cells, dropping NULL and empty ones.
func ToValues(cells []interface{}) ([]itemset.Value, error) {
	out := make([]itemset.Value, 0, len(cells))
	for _, c := range cells {
		v, err := ToValue(c)
		if errors.Is(err, ErrNullValue) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ToInt64 converts a scanned aggregate (COUNT(*) may arrive as int64,
// []byte or string depending on the driver) to int64.
func ToInt64(v interface{}) (int64, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("convert %T to int64: %w", v, err)
	}
	return n, nil
}
