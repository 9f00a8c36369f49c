package util

import "fmt"

// Human formats a byte count with binary units, e.g. "1.50 MB".
func Human(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	v := float64(n)
	unit := "B"
	for _, u := range []string{"KB", "MB", "GB", "TB"} {
		if v < 1024 {
			break
		}
		v /= 1024
		unit = u
	}

	return fmt.Sprintf("%.2f %s", v, unit)
}
