package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrEmptyTable file đọc được nhưng không có bản ghi hợp lệ nào
	ErrEmptyTable = errors.New("reference table is empty")
	// ErrUnsupportedFormat phần mở rộng file không được hỗ trợ
	ErrUnsupportedFormat = errors.New("unsupported reference file format")
)

// RawRecord một dòng của bảng cơ quan thuế: mã, BIN, tên, vùng (vùng có thể rỗng)
type RawRecord struct {
	Code   string `json:"code"`
	BIN    string `json:"bin"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// Options cấu hình đọc file tham chiếu
type Options struct {
	Delimiter rune
	Encoding  string // "utf-8" | "windows-1251"
	HasHeader bool
	Sheet     string // chỉ dùng cho .xlsx; rỗng = sheet đầu tiên
}

// DefaultOptions CSV phân cách bằng ";", UTF-8, có dòng header
func DefaultOptions() Options {
	return Options{
		Delimiter: ';',
		Encoding:  "utf-8",
		HasHeader: true,
	}
}

// LoadReport thống kê một lần load
type LoadReport struct {
	Path        string   `json:"path"`
	Rows        int      `json:"rows"`
	Loaded      int      `json:"loaded"`
	Skipped     int      `json:"skipped"`
	InvalidBINs []string `json:"invalid_bins,omitempty"`
}

// Loader đọc bảng cơ quan thuế từ CSV/TSV/TXT hoặc XLSX
type Loader struct {
	opts   Options
	logger *zap.Logger
}

// NewLoader tạo mới Loader
func NewLoader(opts Options, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}
	return &Loader{opts: opts, logger: logger}
}

// LoadFile đọc file với options cho trước, không log
func LoadFile(path string, opts Options) ([]RawRecord, error) {
	records, _, err := NewLoader(opts, nil).Load(path)
	return records, err
}

// Load đọc file theo phần mở rộng
func (l *Loader) Load(path string) ([]RawRecord, *LoadReport, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		rows, err = l.readDelimited(path, l.opts.Delimiter)
	case ".tsv":
		rows, err = l.readDelimited(path, '\t')
	case ".xlsx":
		rows, err = l.readExcel(path)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, nil, err
	}

	records, report := ParseRows(rows, l.opts.HasHeader)
	report.Path = path

	l.logger.Info("Đã load bảng tham chiếu",
		zap.String("path", path),
		zap.Int("rows", report.Rows),
		zap.Int("loaded", report.Loaded),
		zap.Int("skipped", report.Skipped))
	if len(report.InvalidBINs) > 0 {
		l.logger.Warn("BIN không hợp lệ trong bảng tham chiếu",
			zap.Int("count", len(report.InvalidBINs)),
			zap.Strings("bins", report.InvalidBINs))
	}

	if len(records) == 0 {
		return nil, report, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}
	return records, report, nil
}

// ReadDelimited đọc dữ liệu CSV từ reader, có giải mã charset
func (l *Loader) ReadDelimited(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(l.decode(r))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("lỗi đọc CSV: %w", err)
	}
	return rows, nil
}

func (l *Loader) readDelimited(path string, delimiter rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("không mở được file tham chiếu: %w", err)
	}
	defer file.Close()

	return l.ReadDelimited(file, delimiter)
}

func (l *Loader) readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("không mở được file Excel: %w", err)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("lỗi đọc sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (l *Loader) decode(r io.Reader) io.Reader {
	switch strings.ToLower(strings.ReplaceAll(l.opts.Encoding, "_", "-")) {
	case "windows-1251", "cp1251":
		return transform.NewReader(r, charmap.Windows1251.NewDecoder())
	default:
		return r
	}
}

// ParseRows chuyển các dòng thô thành RawRecord.
// Cột: mã, BIN, tên, vùng. Dòng thiếu cột hoặc tên rỗng bị bỏ qua.
func ParseRows(rows [][]string, hasHeader bool) ([]RawRecord, *LoadReport) {
	report := &LoadReport{}
	if hasHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	records := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		report.Rows++

		if len(row) < 3 {
			report.Skipped++
			continue
		}

		rec := RawRecord{
			Code: cleanCell(row[0]),
			BIN:  CleanBIN(cleanCell(row[1])),
			Name: cleanCell(row[2]),
		}
		if len(row) > 3 {
			rec.Region = cleanCell(row[3])
		}
		if rec.Name == "" {
			report.Skipped++
			continue
		}
		if rec.BIN != "" && !ValidateBIN(rec.BIN) {
			report.InvalidBINs = append(report.InvalidBINs, rec.BIN)
		}

		records = append(records, rec)
	}

	report.Loaded = len(records)
	return records, report
}

// cleanCell bỏ BOM, NFC rồi trim
func cleanCell(cell string) string {
	cell = strings.TrimPrefix(cell, "\uFEFF")
	return strings.TrimSpace(norm.NFC.String(cell))
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
