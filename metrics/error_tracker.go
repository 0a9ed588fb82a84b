package metrics

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/assetkit/assetindexer/types"
)

const errTypePanic = "PANIC"

// ErrorType classifies err by its StandardError type, or "unknown".
func ErrorType(err error) string {
	var se *types.StandardError
	if errors.As(err, &se) {
		return string(se.Type)
	}
	return "unknown"
}

func TrackPanic(component string) {
	m := GetMetrics().Error
	m.Panics.WithLabelValues(component).Inc()
	m.LastError.WithLabelValues(component).SetToCurrentTime()
}

// TrackError counts err against the stage of component that failed.
func TrackError(component, stage string, err error) {
	m := GetMetrics().Error
	m.Errors.WithLabelValues(component, stage, ErrorType(err)).Inc()
	m.LastError.WithLabelValues(component).Set(float64(time.Now().Unix()))
}

func SetComponentHealth(component string, healthy bool) {
	var status float64
	if healthy {
		status = 1
	}
	GetMetrics().Error.ComponentHealth.WithLabelValues(component).Set(status)
}

// RecoverFromPanic tracks a panic of the calling goroutine and re-panics with
// the function name attached. Use as a deferred call.
func RecoverFromPanic(component string) {
	if r := recover(); r != nil {
		pc, _, _, ok := runtime.Caller(2)
		functionName := "unknown"
		if ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				functionName = fn.Name()
			}
		}

		TrackPanic(component)
		GetMetrics().Error.Errors.WithLabelValues(component, "recover", errTypePanic).Inc()
		SetComponentHealth(component, false)

		panic(fmt.Sprintf("recovered panic in %s (%s): %v", component, functionName, r))
	}
}
