package method

import (
	"time"
)

func (m *Method) AlwaysTrue() bool {
	return true
}

func (m *Method) SleepMilliseconds(milliseconds int) bool {
	time.Sleep(time.Duration(milliseconds) * time.Millisecond)
	return true
}
