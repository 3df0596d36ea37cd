package constants

import (
	"os"
	"strconv"
)

const (
	SongMidiFile = "notes.mid"
	SongIniFile  = "song.ini"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetDestDir() string {
	return getenv("CHART_DEST_PATH", "./out")
}

func GetWorkers() int {
	n, err := strconv.Atoi(os.Getenv("CHART_WORKERS"))
	if err != nil || n < 1 {
		return 4
	}
	return n
}

// GetCatalogEndpoint is empty when no catalog should be published to.
func GetCatalogEndpoint() string {
	return os.Getenv("CHART_CATALOG_ENDPOINT")
}

func GetCatalogTable() string {
	return getenv("CHART_CATALOG_TABLE", "chartconv-songs")
}

func GetCatalogRegion() string {
	return getenv("CHART_CATALOG_REGION", "us-east-1")
}

func GetServeAddr() string {
	return getenv("CHART_SERVE_ADDR", ":8080")
}
