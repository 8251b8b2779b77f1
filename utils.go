package inject

import (
	"reflect"
)

func empty[T any]() T {
	var t T
	return t
}

func elem[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func must[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}
