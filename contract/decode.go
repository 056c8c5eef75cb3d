package contract

import (
	"reflect"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/pkg/errors"
)

// decodeResults unpacks the return data of a function into R. Functions without outputs decode into the zero value,
// a single output converts directly into R, and multiple outputs fill the fields of the struct R by position.
func decodeResults[R any](method *abi.Method, output []byte) (result R, err error) {
	if len(method.Outputs) == 0 {
		return result, nil
	}

	values, err := method.Outputs.Unpack(output)
	if err != nil {
		return result, errors.Wrapf(err, "could not decode the results of '%s'", method.Sig)
	}

	// abi.ConvertType panics on incompatible types.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("could not convert the results of '%s' into %T: %v", method.Sig, result, r)
		}
	}()

	if len(values) == 1 {
		result = *abi.ConvertType(values[0], new(R)).(*R)
		return result, nil
	}

	target := reflect.ValueOf(&result).Elem()
	if target.Kind() != reflect.Struct || target.NumField() != len(values) {
		return result, errors.Errorf("cannot decode %d results of '%s' into %s", len(values), method.Sig, target.Type())
	}
	for i, value := range values {
		field := target.Field(i)
		if !field.CanSet() {
			return result, errors.Errorf("result field %d of %s is not settable", i, target.Type())
		}
		converted := abi.ConvertType(value, reflect.New(field.Type()).Interface())
		field.Set(reflect.ValueOf(converted).Elem())
	}
	return result, nil
}
