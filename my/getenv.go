package my

import (
	"os"
	"strconv"
	"time"
)

// Getenv returns the environment variable named key, or def if unset
// or empty.
func Getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

// GetenvFloat parses key as a float64, returning def unparsed if the
// variable is unset.
func GetenvFloat(key string, def float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	return strconv.ParseFloat(val, 64)
}

// GetenvInt parses key as an int, returning def unparsed if the
// variable is unset.
func GetenvInt(key string, def int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	return strconv.Atoi(val)
}

// GetenvDuration parses key via time.ParseDuration, returning def
// unparsed if the variable is unset.
func GetenvDuration(key string, def time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return def, nil
	}
	return time.ParseDuration(val)
}
