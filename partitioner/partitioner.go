package partitioner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danthegoodman1/tablemap/table"
)

type (
	PartitionPlan struct {
		Func string   `validate:"required"`
		Args []string `validate:"required,min=1"`
		As   string   `validate:"required"`
	}

	// RowGetter reads a single column of a row
	RowGetter func(col string) (any, error)

	PartitionFunc func(row RowGetter, args []string) (string, error)
)

var (
	Functions = map[string]PartitionFunc{
		"toDay": func(row RowGetter, args []string) (string, error) {
			t, err := parseTimeFunc(row, args)
			if err != nil {
				return "", fmt.Errorf("error in parseTimeFunc: %w", err)
			}
			return fmt.Sprint(t.Day()), nil
		},
		"toMonth": func(row RowGetter, args []string) (string, error) {
			t, err := parseTimeFunc(row, args)
			if err != nil {
				return "", fmt.Errorf("error in parseTimeFunc: %w", err)
			}
			return fmt.Sprint(int(t.Month())), nil
		},
		"toYear": func(row RowGetter, args []string) (string, error) {
			t, err := parseTimeFunc(row, args)
			if err != nil {
				return "", fmt.Errorf("error in parseTimeFunc: %w", err)
			}
			return fmt.Sprint(t.Year()), nil
		},
		"toYearDay": func(row RowGetter, args []string) (string, error) {
			t, err := parseTimeFunc(row, args)
			if err != nil {
				return "", fmt.Errorf("error in parseTimeFunc: %w", err)
			}
			return fmt.Sprint(t.YearDay()), nil
		},
		"toYearWeek": func(row RowGetter, args []string) (string, error) {
			t, err := parseTimeFunc(row, args)
			if err != nil {
				return "", fmt.Errorf("error in parseTimeFunc: %w", err)
			}
			_, week := t.ISOWeek()
			return fmt.Sprint(week), nil
		},
		"toWeekDay": func(row RowGetter, args []string) (string, error) {
			t, err := parseTimeFunc(row, args)
			if err != nil {
				return "", fmt.Errorf("error in parseTimeFunc: %w", err)
			}
			return fmt.Sprint(int(t.Weekday())), nil
		},
	}

	ErrFuncNotFound = errors.New("partition function not found")

	ErrMissingArgs       = errors.New("missing args")
	ErrMissingColumns    = errors.New("missing one or more columns specified in args")
	ErrInvalidColumnType = errors.New("invalid column type")
)

// MapGetter reads columns from a flat map row
func MapGetter(row map[string]any) RowGetter {
	return func(col string) (any, error) {
		val, exists := row[col]
		if !exists {
			return nil, ErrMissingColumns
		}
		return val, nil
	}
}

// TableRowGetter reads columns from one row of a table.TableMap. A nil cell
// is reported as missing, the table cannot tell a null apart from a column the
// row never set.
func TableRowGetter[V any](tm *table.TableMap[V], row int) RowGetter {
	return func(col string) (any, error) {
		val, err := tm.GetAt(row, col)
		if errors.Is(err, table.ErrUnknownColumn) || errors.Is(err, table.ErrNoDataForRow) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, err)
		}
		if err != nil {
			return nil, err
		}
		if any(val) == nil {
			return nil, fmt.Errorf("%w: %s is empty in row %d", ErrMissingColumns, col, row)
		}
		return val, nil
	}
}

// GetRowPartition returns the partition path for the row, one `as=value`
// segment per plan joined with `/`. No plans is the empty partition.
func GetRowPartition(row RowGetter, partitioners []PartitionPlan) (string, error) {
	var finalParts []string
	for _, partFunc := range partitioners {
		f, ok := Functions[partFunc.Func]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrFuncNotFound, partFunc.Func)
		}

		s, err := f(row, partFunc.Args)
		if err != nil {
			return "", fmt.Errorf("error processing partition function %s: %w", partFunc.Func, err)
		}
		finalParts = append(finalParts, fmt.Sprintf("%s=%s", partFunc.As, s))
	}
	return strings.Join(finalParts, "/"), nil
}

// IsUserError reports errors caused by the submitted rows or plans rather than the server
func IsUserError(err error) bool {
	return errors.Is(err, ErrFuncNotFound) || errors.Is(err, ErrMissingArgs) || errors.Is(err, ErrMissingColumns) || errors.Is(err, ErrInvalidColumnType)
}

func parseTimeFunc(row RowGetter, args []string) (t time.Time, err error) {
	if len(args) == 0 {
		err = ErrMissingArgs
		return
	}

	key := args[0]

	if key == "now()" {
		t = time.Now()
		return
	}

	value, err := row(key)
	if err != nil {
		return
	}

	switch val := value.(type) {
	case string:
		// We have a datetime like YYYY-MM-DDTHH:mm:ss.sssZ
		t, err = time.Parse("2006-01-02T15:04:05.000Z", val)
		if err != nil {
			err = fmt.Errorf("error in time.Parse for string: %s: %w", err, ErrInvalidColumnType)
		}
	case *string:
		if val == nil {
			err = ErrMissingColumns
			return
		}
		t, err = parseTimeFunc(MapGetter(map[string]any{key: *val}), args)
	case float64:
		// We have a float as an int
		t = time.UnixMilli(int64(val)).UTC()
	default:
		err = ErrInvalidColumnType
	}
	return
}
