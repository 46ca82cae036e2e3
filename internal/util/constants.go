package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// Progression constants: the main quiz passes at 70% or a perfect score,
// level 1 assistance requires every answer correct, and the fourth failed
// attempt is terminal.
const (
	PassingScorePercent = 70
	MaxFailedAttempts   = 4
	AssistanceLevelMin  = 1
	AssistanceLevelMax  = 3
)

const (
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)
