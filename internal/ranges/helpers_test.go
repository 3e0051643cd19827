package ranges

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func formatRate(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
