package logger

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"sync/atomic"

	"github.com/cornelk/hashmap"
)

const (
	ERROR   = 1
	INFO    = 2
	VERBOSE = 3
	DEBUG   = 7
)

type Logger struct {
	level   int
	limiter int
	filter  *regexp.Regexp
	counter *hashmap.HashMap
	out     *log.Logger
}

func New(level int, w io.Writer) *Logger {
	return &Logger{
		level:   level,
		counter: &hashmap.HashMap{},
		out:     log.New(w, "", log.LstdFlags),
	}
}

// Discard drops everything, it is the client default.
func Discard() *Logger {
	return New(0, io.Discard)
}

func (l *Logger) Level() int {
	return l.level
}

func (l *Logger) SetLevel(level int) {
	l.level = level
}

func (l *Logger) SetLimiter(limiter int) {
	l.limiter = limiter
}

func (l *Logger) SetFilter(pattern string) error {
	if pattern == "" {
		l.filter = nil
		return nil
	}
	// https://github.com/google/re2/wiki/Syntax
	reg, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	l.filter = reg
	return nil
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.printfAtLevel(ERROR, format, v...)
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.printfAtLevel(INFO, format, v...)
}

func (l *Logger) Verbosef(format string, v ...interface{}) {
	l.printfAtLevel(VERBOSE, format, v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.printfAtLevel(DEBUG, format, v...)
}

func (l *Logger) printfAtLevel(level int, format string, v ...interface{}) {
	if l.level < level {
		return
	}
	out := l.filterOutput(format, v...)
	if out == "" {
		return
	}
	if !l.limiterAvailable(out) {
		return
	}
	l.out.Print(out)
}

func (l *Logger) limiterAvailable(out string) bool {
	if l.limiter == 0 {
		return true
	}
	var i int64
	val, _ := l.counter.GetOrInsert(out, &i)
	actual := (val).(*int64)
	count := atomic.AddInt64(actual, 1)
	return count <= int64(l.limiter)
}

func (l *Logger) filterOutput(format string, v ...interface{}) string {
	out := fmt.Sprintf(format, v...)
	if l.filter == nil || l.filter.MatchString(out) {
		return out
	}
	return ""
}
