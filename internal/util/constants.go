package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 流式代理相关常量
const (
	MimeVideoMP4    = "video/mp4"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"

	HeaderRange         = "Range"
	HeaderContentRange  = "Content-Range"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderAcceptRanges  = "Accept-Ranges"
)

// 测验选项数固定为4
const QuizOptionCount = 4
