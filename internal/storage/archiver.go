package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"ratingd/internal/providers"
	"ratingd/internal/storage/interfaces"
	"ratingd/internal/structures"
	"strconv"
	"time"
)

const (
	archiveTimeLayout = "20060102_150405"
	archiveSuffix     = ".bak"
	compressedSuffix  = ".zst"

	ReasonCorrupt = "corrupt"
	ReasonReplace = "replace"
	ReasonReset   = "reset"
)

// Archiver moves files that are about to be recreated or overwritten into
// the archive directory as <name>.<YYYYMMDD_HHMMSS>.bak. Archives are
// write-only from the daemon's point of view.
type Archiver struct {
	dir        string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	now        func() time.Time
}

func NewArchiver(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (*Archiver, error) {
	var compressor interfaces.CompressorInterface
	if conf.Archive.Compress {
		c, err := NewZstdCompressor()
		if err != nil {
			return nil, err
		}
		compressor = c
	}
	return &Archiver{
		dir:        conf.Storage.ArchiveDir,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}, nil
}

func (a *Archiver) Dir() string {
	return a.dir
}

// Archive moves path into the archive directory and returns the archive
// path. A missing source is not an error and yields "".
func (a *Archiver) Archive(path, reason string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	if err := ensureDir(a.dir); err != nil {
		return "", err
	}

	target := a.archivePath(filepath.Base(path))

	var err error
	if a.compressor != nil {
		err = a.compressInto(path, target)
	} else {
		err = moveFile(path, target)
	}
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", path, err)
	}

	a.metrics.IncArchives(filepath.Base(path), reason)
	a.logger.Warnf(providers.TypeStorage, "Archived %s to %s (%s)", path, target, reason)
	return target, nil
}

// archivePath picks a name that does not exist yet; a second archive of
// the same file within one second gets a _N suffix on the timestamp.
func (a *Archiver) archivePath(base string) string {
	stamp := a.now().Format(archiveTimeLayout)
	suffix := archiveSuffix
	if a.compressor != nil {
		suffix += compressedSuffix
	}

	candidate := filepath.Join(a.dir, base+"."+stamp+suffix)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(a.dir, base+"."+stamp+"_"+strconv.Itoa(i)+suffix)
	}
}

func (a *Archiver) compressInto(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	compressed, err := a.compressor.Compress(data)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(dst, compressed); err != nil {
		return err
	}
	return os.Remove(src)
}

func (a *Archiver) Close() {
	if a.compressor != nil {
		a.compressor.Close()
	}
}

// moveFile renames src to dst, falling back to copy+remove when the
// archive directory sits on another filesystem.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
