package method

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// JSONValue extracts the value at path from a JSON document, typically a
// response body captured by LoadURLAndWaitResponse.
func (m *Method) JSONValue(json, path string) (string, error) {
	if !gjson.Valid(json) {
		return "", fmt.Errorf("response is not valid json")
	}
	result := gjson.Get(json, path)
	if !result.Exists() {
		return "", fmt.Errorf("%s not found in response", path)
	}
	return result.String(), nil
}

func (m *Method) JSONExists(json, path string) bool {
	return gjson.Get(json, path).Exists()
}
