package runner

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ErrWorkflowFailed wraps the error of the step that stopped a workflow.
var ErrWorkflowFailed = errors.New("workflow failed")

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type RunnerResult struct {
	Value any
	Type  string
}

// RunnerManager executes workflows by calling methods of target by name.
type RunnerManager struct {
	name    string
	target  any
	results map[string]RunnerResult
}

func NewRunnerManager(name string, target any) *RunnerManager {
	return &RunnerManager{
		name:    name,
		target:  target,
		results: make(map[string]RunnerResult),
	}
}

func (rm *RunnerManager) SetVariable(name string, value any, valueType string) {
	rm.results[name] = RunnerResult{
		Value: value,
		Type:  valueType,
	}
}

func (rm *RunnerManager) Variable(name string) (RunnerResult, bool) {
	v, ok := rm.results[name]
	return v, ok
}

// Run executes every step in order. A failing step is retried Retry times;
// an optional step that still fails is skipped, any other stops the run.
func (rm *RunnerManager) Run(ctx context.Context, wf *Workflow) error {
	if wf == nil {
		return nil
	}
	log.Debugf("[%s] running workflow %s with %d steps", rm.name, wf.Name, len(wf.Steps))

	for _, step := range wf.Steps {
		var err error
		for attempt := 0; attempt <= step.Retry; attempt++ {
			if errCtx := ctx.Err(); errCtx != nil {
				log.Debugf("[%s] get abort signal, stop workflow %s", rm.name, wf.Name)
				return errCtx
			}
			if attempt > 0 {
				log.Debugf("[%s] retry %d of step %d %s", rm.name, attempt, step.Index, step.Action)
			}
			err = rm.executeStep(step)
			if err == nil {
				break
			}
		}

		if err != nil {
			if step.Optional {
				log.Warnf("[%s] optional step %d %s failed: %v", rm.name, step.Index, step.Action, err)
				continue
			}
			return fmt.Errorf("%w: step %d %s: %w", ErrWorkflowFailed, step.Index, step.Action, err)
		}
		log.Debugf("[%s] step %d %s done", rm.name, step.Index, step.Action)
	}
	return nil
}

func (rm *RunnerManager) executeStep(step ConfigurationWorkflow) error {
	if step.Description != "" {
		log.Debugf("[%s] %s", rm.name, step.Description)
	}
	callParams := make([]interface{}, len(step.Params))
	for i := 0; i < len(step.Params); i++ {
		callParams[i] = step.Params[i]
	}

	log.Debugf("prepare to execute workflow %s with params %v", step.Action, step.Params)
	results, err := rm.executeMethod(rm.target, step.Action, callParams)
	if err != nil {
		return err
	}

	for _, result := range results {
		if result.Type().Implements(errorType) && !result.IsNil() {
			return result.Interface().(error)
		}
	}
	if len(results) > 0 && results[0].Type() == reflect.TypeOf(false) && !results[0].Bool() {
		return fmt.Errorf("%s returned false", step.Action)
	}

	if step.Result != "" && len(results) > 0 && !results[0].Type().Implements(errorType) {
		log.Debugf("store result to global variable #%s#", step.Result)
		rm.SetVariable(step.Result, results[0].Interface(), results[0].Type().String())
	}
	return nil
}

func (rm *RunnerManager) executeMethod(obj any, methodName string, params []interface{}) ([]reflect.Value, error) {
	methodValue := reflect.ValueOf(obj)
	methodType := reflect.TypeOf(obj)

	m, found := methodType.MethodByName(methodName)
	if !found {
		return nil, fmt.Errorf("method '%s' not found", methodName)
	}

	log.Debugf("execute method: %s", methodName)

	// Get method type
	methodFunc := m.Type

	if methodFunc.NumIn() != len(params)+1 {
		return nil, fmt.Errorf("method '%s' expects %d parameters, got %d", methodName, methodFunc.NumIn()-1, len(params))
	}

	// Prepare parameters (skip the first parameter, i.e., receiver)
	args := make([]reflect.Value, methodFunc.NumIn()-1)

	for i := 1; i < methodFunc.NumIn(); i++ {
		paramType := methodFunc.In(i)
		paramIndex := i - 1

		if reflect.TypeOf(params[paramIndex]).Kind() == reflect.String {
			input := strings.TrimSpace(reflect.ValueOf(params[paramIndex]).String())
			if len(input) > 2 && input[0] == '#' && input[len(input)-1] == '#' {
				variable, ok := rm.results[input[1:len(input)-1]]
				if !ok {
					return nil, fmt.Errorf("variable %s is not set", input)
				}
				value := reflect.ValueOf(variable.Value)
				if !value.IsValid() || !value.Type().AssignableTo(paramType) {
					return nil, fmt.Errorf("variable %s cannot be used as %s", input, paramType)
				}
				args[paramIndex] = value
			} else {
				value, err := rm.convertToType(input, paramType)
				if err != nil {
					return nil, fmt.Errorf("parameter type error: %v", err)
				}
				args[paramIndex] = value
			}
		} else {
			args[paramIndex] = reflect.ValueOf(params[paramIndex])
		}
	}

	// Execute method
	return methodValue.MethodByName(methodName).Call(args), nil
}

// convertToType converts string input to the specified type
func (rm *RunnerManager) convertToType(input string, targetType reflect.Type) (reflect.Value, error) {
	switch targetType.Kind() {
	case reflect.String:
		return reflect.ValueOf(input).Convert(targetType), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		val, err := strconv.ParseInt(input, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to integer: %v", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to unsigned integer: %v", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to float: %v", err)
		}
		return reflect.ValueOf(val).Convert(targetType), nil

	case reflect.Bool:
		val, err := strconv.ParseBool(input)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot convert to boolean: %v", err)
		}
		return reflect.ValueOf(val), nil

	default:
		return reflect.Value{}, fmt.Errorf("unsupported parameter type: %s", targetType.String())
	}
}
