package script

import "reflect"

func hasMethod(obj any, name string) bool {
	_, ok := reflect.TypeOf(obj).MethodByName(name)
	return ok
}
