package config

import "os"

func IsDebug() bool {
	return os.Getenv("HUBGRAM_DEBUG") == "1"
}

// IsJSONLog reports whether logs go out as JSON lines instead of the console format.
func IsJSONLog() bool {
	return os.Getenv("HUBGRAM_LOG_FORMAT") == "json"
}
