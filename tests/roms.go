// Package tests provides the roms shared by the tests of several packages.
package tests

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// Program assembles CHIP-8 opcodes into a rom image.
func Program(ops ...uint16) []byte {
	buf := make([]byte, 0, 2*len(ops))
	for _, op := range ops {
		buf = binary.BigEndian.AppendUint16(buf, op)
	}
	return buf
}

const (
	suiteURL    = `https://github.com/Timendus/chip8-test-suite/archive/refs/heads/main.zip`
	suitePrefix = "chip8-test-suite-main"
	suiteDir    = "chip8-test-suite"
)

func decompress(zipFile, dest string) error {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fname := strings.Replace(f.Name, suitePrefix, suiteDir, 1)
		fpath := filepath.Join(dest, fname)
		if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("%s: illegal file path", fpath)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, os.ModePerm); err != nil {
				return err
			}
			continue
		}

		if err = os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return err
		}
		if err := extract(f, fpath); err != nil {
			return err
		}
	}

	return nil
}

func extract(f *zip.File, fpath string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func downloadSuite(dest string) error {
	resp, err := http.Get(suiteURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", suiteURL, resp.Status)
	}

	tmpf, err := os.CreateTemp("", "chip8-test-suite-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmpf.Name())
	defer tmpf.Close()

	if _, err := io.Copy(tmpf, resp.Body); err != nil {
		return err
	}
	if err := decompress(tmpf.Name(), dest); err != nil {
		return fmt.Errorf("failed to decompress test roms: %s", err)
	}
	return nil
}

var suitePath = sync.OnceValues(func() (string, error) {
	_, b, _, _ := runtime.Caller(0)
	testsDir := filepath.Dir(b)
	romsDir := filepath.Join(testsDir, suiteDir, "bin")

	if _, err := os.Stat(romsDir); errors.Is(err, fs.ErrNotExist) {
		if err := downloadSuite(testsDir); err != nil {
			return "", err
		}
	}
	return romsDir, nil
})

// SuitePath returns the directory holding the roms of Timendus' CHIP-8 test
// suite, downloading it the first time. The test is skipped in short mode
// or if the suite can't be downloaded.
func SuitePath(tb testing.TB) string {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping test suite roms in short mode")
	}
	dir, err := suitePath()
	if err != nil {
		tb.Skipf("chip8 test suite unavailable: %v", err)
	}
	return dir
}
