package klog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	output io.Writer = os.Stderr
	debug            = false
	mtx    sync.Mutex
)

const prefixFmt string = "[%s]\t%s %s:%d %s "

// SetLogFile redirects all log output to the given file.
// An empty path or an open failure keeps the output on stderr.
func SetLogFile(pathName string) {
	mtx.Lock()
	defer mtx.Unlock()
	if pathName == "" {
		output = os.Stderr
		return
	}
	logFile, err := os.OpenFile(pathName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Printf("open log file failed, output to stderr\n")
		output = os.Stderr
		return
	}
	output = logFile
}

// SetDebug enables or disables Debugf output.
func SetDebug(enabled bool) {
	mtx.Lock()
	defer mtx.Unlock()
	debug = enabled
}

func logf(level string, f string, v ...any) {
	funcName, file, line, _ := runtime.Caller(2)
	strBuilder := strings.Builder{}
	strBuilder.WriteString(prefixFmt)
	strBuilder.WriteString(f)
	var a = []any{level, time.Now().Format("2006-01-02 15:04:05"), file, line, runtime.FuncForPC(funcName).Name()}
	a = append(a, v...)
	mtx.Lock()
	defer mtx.Unlock()
	_, _ = fmt.Fprintf(output, strBuilder.String(), a...)
}

// Infof outputs log with level Info
func Infof(f string, v ...any) {
	logf("Info", f, v...)
}

// Warnf outputs log with level Warn
func Warnf(f string, v ...any) {
	logf("Warn", f, v...)
}

// Errorf outputs log with level Error
func Errorf(f string, v ...any) {
	logf("Error", f, v...)
}

// Fatalf outputs log and the program exits with code 1
func Fatalf(f string, v ...any) {
	logf("Fatal", f, v...)
	os.Exit(1)
}

// Debugf outputs log with level Debug when debug is enabled.
func Debugf(f string, v ...any) {
	mtx.Lock()
	enabled := debug
	mtx.Unlock()
	if !enabled {
		return
	}
	logf("Debug", f, v...)
}
