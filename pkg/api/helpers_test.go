package api

import (
	"fmt"
	"strconv"
)

func itoa(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
func hex(v uint32) string  { return fmt.Sprintf("%X", v) }
