package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FloatArray is a flag.Getter collecting comma separated or repeated float
// values, kept sorted in descending order.
type FloatArray []float64

func (a *FloatArray) Get() interface{} { return []float64(*a) }

func (a *FloatArray) Set(param string) error {
	for _, s := range strings.Split(param, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("could not parse %q: %w", s, err)
		}
		*a = append(*a, v)
	}
	sort.Sort(*a)
	return nil
}

func (a FloatArray) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a FloatArray) Less(i, j int) bool { return a[i] > a[j] }
func (a FloatArray) Len() int           { return len(a) }

func (a *FloatArray) String() string {
	if len(*a) == 0 {
		return ""
	}
	s := make([]string, len(*a))
	for i, v := range *a {
		s[i] = fmt.Sprintf("%f", v)
	}
	return strings.Join(s, ",")
}
