package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix            = "medicine-library-"
	defaultRetentionWeeks = 4
	cleanupInterval       = 24 * time.Hour
)

var (
	errFileClosed   = errors.New("log file is closed")
	sequencePattern = regexp.MustCompile(`_(\d{2,})\.log$`)
)

// RotatingFile is an io.Writer that starts a new file every ISO week, and a numbered
// continuation file whenever the current one would grow past the size limit.
// Files older than the retention period are removed once a day.
type RotatingFile struct {
	dir       string
	retention time.Duration
	maxSize   int64
	now       func() time.Time

	mu   sync.Mutex
	file *os.File
	week string
	seq  int
	size int64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// OpenRotatingFile creates dir if needed and opens the file for the current week.
// maxSize <= 0 disables size rotation.
func OpenRotatingFile(dir string, retentionWeeks int, maxSize int64) (*RotatingFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if retentionWeeks <= 0 {
		retentionWeeks = defaultRetentionWeeks
	}

	rf := &RotatingFile{
		dir:       dir,
		retention: time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxSize:   maxSize,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	rf.mu.Lock()
	err := rf.rotateLocked(weekKey(rf.now()), false)
	rf.mu.Unlock()
	if err != nil {
		return nil, err
	}

	go rf.cleanupLoop()
	return rf, nil
}

// weekKey returns the ISO week in YYYY-Www form
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func fileName(week string, seq int) string {
	if seq == 0 {
		return filePrefix + week + ".log"
	}
	return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, seq)
}

// lastSequence returns the highest continuation number already on disk for week.
func (rf *RotatingFile) lastSequence(week string) int {
	matches, _ := filepath.Glob(filepath.Join(rf.dir, filePrefix+week+"_*.log"))
	highest := 0
	for _, match := range matches {
		m := sequencePattern.FindStringSubmatch(match)
		if len(m) < 2 {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}

// rotateLocked switches to the newest file of week, or to a new continuation file if next is set.
func (rf *RotatingFile) rotateLocked(week string, next bool) error {
	if rf.file != nil {
		_ = rf.file.Close()
		rf.file = nil
	}

	seq := rf.seq
	if week != rf.week {
		seq = rf.lastSequence(week)
	}
	if next {
		seq++
	}

	path := filepath.Join(rf.dir, fileName(week, seq))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	rf.file, rf.week, rf.seq, rf.size = file, week, seq, size
	return nil
}

// Write appends p to the current file, rotating first when needed.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return 0, errFileClosed
	}

	if week := weekKey(rf.now()); week != rf.week {
		if err := rf.rotateLocked(week, false); err != nil {
			return 0, err
		}
	}
	if rf.maxSize > 0 && rf.size > 0 && rf.size+int64(len(p)) > rf.maxSize {
		if err := rf.rotateLocked(rf.week, true); err != nil {
			return 0, err
		}
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// CurrentPath returns the path of the file being written.
func (rf *RotatingFile) CurrentPath() string {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return filepath.Join(rf.dir, fileName(rf.week, rf.seq))
}

// Cleanup removes log files last modified before the retention period and
// returns how many were deleted. The current file is always kept.
func (rf *RotatingFile) Cleanup() (int, error) {
	entries, err := os.ReadDir(rf.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	current := filepath.Base(rf.CurrentPath())
	cutoff := rf.now().Add(-rf.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == current || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(rf.dir, name)); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

func (rf *RotatingFile) cleanupLoop() {
	defer close(rf.done)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rf.stop:
			return
		case <-ticker.C:
			// Written to stderr: logging through slog here would write back into this file
			if n, err := rf.Cleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "log cleanup failed: %v\n", err)
			} else if n > 0 {
				fmt.Fprintf(os.Stderr, "removed %d old log files\n", n)
			}
		}
	}
}

// Close stops the cleanup loop and closes the current file.
func (rf *RotatingFile) Close() error {
	var err error
	rf.closeOnce.Do(func() {
		close(rf.stop)
		<-rf.done

		rf.mu.Lock()
		defer rf.mu.Unlock()
		if rf.file != nil {
			err = rf.file.Close()
			rf.file = nil
		}
	})
	return err
}
