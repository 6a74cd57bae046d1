package log

import (
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

const dayLayout = "2006-01-02"

// dailyFile appends to path. The first write of a new local day renames the
// current file to path.YYYY-MM-DD and starts a fresh one.
type dailyFile struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
	day  string
	f    *os.File
}

func openDailyFile(path string, now func() time.Time) (*dailyFile, error) {
	d := &dailyFile{path: path, now: now, day: now().Format(dayLayout)}
	// a file left over from an earlier day is rotated on the first write
	if fi, err := os.Stat(path); err == nil {
		d.day = fi.ModTime().Format(dayLayout)
	}
	if err := d.open(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if day := d.now().Format(dayLayout); day != d.day {
		if err := d.rotate(day); err != nil {
			return 0, err
		}
	}
	return d.f.Write(p)
}

func (d *dailyFile) rotate(day string) error {
	if err := d.f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close log file %s", d.path)
	}
	if err := os.Rename(d.path, d.path+"."+d.day); err != nil && !os.IsNotExist(err) {
		// keep writing to the current file rather than losing records
		if oerr := d.open(); oerr != nil {
			return oerr
		}
		return errors.Wrapf(err, "failed to rotate log file %s", d.path)
	}
	d.day = day
	return d.open()
}

func (d *dailyFile) open() error {
	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open log file %s", d.path)
	}
	d.f = f
	return nil
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Close()
}
