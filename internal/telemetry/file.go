package telemetry

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/raglens/rag-lens/internal/pkg/errors"
	"github.com/raglens/rag-lens/internal/pkg/logger"
)

// FileSource reads a newline-delimited JSON query log from disk.
type FileSource struct {
	path string
	log  *logger.Logger
}

// NewFileSource creates a file source for the given log path.
func NewFileSource(path string, log *logger.Logger) *FileSource {
	if log == nil {
		log = logger.Default()
	}
	return &FileSource{
		path: path,
		log:  log.WithSource("file"),
	}
}

// Load reads the whole log. Blank lines are skipped; any line that fails to
// decode aborts the load and no records are returned. A corrupt log is
// worse analyzed partially than not at all.
func (s *FileSource) Load(ctx context.Context) ([]QueryRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("log file").WithDetail("path", s.path)
		}
		return nil, errors.SourceError("opening log file", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	// Increase buffer size for potentially large records
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	var records []QueryRecord
	line := 0
	for scanner.Scan() {
		line++

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.CodeTimeout, "load cancelled", ctx.Err())
		default:
		}

		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}

		rec, err := decodeRecord(scanner.Bytes(), line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.SourceError("reading log file", err)
	}

	s.log.Info("Loaded query log", "path", s.path, "records", len(records))
	return records, nil
}

// Close implements Source. The file source holds no open resources
// between loads.
func (s *FileSource) Close() error {
	return nil
}
