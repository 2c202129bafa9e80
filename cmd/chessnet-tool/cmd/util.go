package cmd

import (
	"strconv"
	"time"
)

func elapsed(millis int64) time.Duration {
	return (time.Duration(millis) * time.Millisecond).Truncate(time.Second)
}

func itoa(v int32) string {
	return strconv.Itoa(int(v))
}
