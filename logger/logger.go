package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel 日志等级
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// ParseLevel 解析配置中的日志等级，无法识别时为 INFO
func ParseLevel(logLevel string) LogLevel {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger 日志记录器
type Logger struct {
	level      LogLevel
	prefix     string
	fileHandle *os.File
	writers    []io.Writer
	mu         *sync.Mutex
}

// NewLogger 创建同时写入标准输出和日志文件的记录器
func NewLogger(logLevel string, logFile string) (*Logger, error) {
	// 打开日志文件
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := NewWriterLogger(logLevel, os.Stdout, file)
	logger.fileHandle = file

	return logger, nil
}

// NewWriterLogger 创建写入指定 writer 的记录器
func NewWriterLogger(logLevel string, writers ...io.Writer) *Logger {
	return &Logger{
		level:   ParseLevel(logLevel),
		writers: writers,
		mu:      &sync.Mutex{},
	}
}

// With 返回带前缀的子记录器，共享输出
func (l *Logger) With(prefix string) *Logger {
	child := *l
	if l.prefix != "" {
		child.prefix = l.prefix + " " + prefix
	} else {
		child.prefix = prefix
	}
	child.fileHandle = nil
	return &child
}

// logWithLevel 记录指定级别的日志
func (l *Logger) logWithLevel(levelStr string, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	if l.prefix != "" {
		message = "[" + l.prefix + "] " + message
	}
	logMessage := fmt.Sprintf("[%s] [%s] %s\n", timestamp, levelStr, message)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, writer := range l.writers {
		fmt.Fprint(writer, logMessage)
	}
}

// Debug 记录 DEBUG 级别日志
func (l *Logger) Debug(message string) {
	if l.level <= DEBUG {
		l.logWithLevel("DEBUG", message)
	}
}

// Info 记录 INFO 级别日志
func (l *Logger) Info(message string) {
	if l.level <= INFO {
		l.logWithLevel("INFO", message)
	}
}

// Warn 记录 WARN 级别日志
func (l *Logger) Warn(message string) {
	if l.level <= WARN {
		l.logWithLevel("WARN", message)
	}
}

// Error 记录 ERROR 级别日志
func (l *Logger) Error(message string) {
	if l.level <= ERROR {
		l.logWithLevel("ERROR", message)
	}
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		return l.fileHandle.Close()
	}
	return nil
}
