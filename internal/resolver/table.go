package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ugd-resolver/internal/reference"
)

// Table bảng tham chiếu bất biến. Thay bảng bằng Resolver.Swap, không sửa tại chỗ.
type Table struct {
	records  []*Record
	byCode   map[string]*Record
	version  string
	loadedAt time.Time
}

// NewTable chuẩn hóa toàn bộ bản ghi thô một lần.
// version rỗng thì dùng fingerprint nội dung.
func NewTable(raw []reference.RawRecord, version string) *Table {
	if version == "" {
		version = Fingerprint(raw)
	}

	t := &Table{
		records:  make([]*Record, 0, len(raw)),
		byCode:   make(map[string]*Record, len(raw)),
		version:  version,
		loadedAt: time.Now(),
	}
	for _, r := range raw {
		rec := NewRecord(r)
		t.records = append(t.records, rec)
		if _, dup := t.byCode[rec.Code]; !dup && rec.Code != "" {
			t.byCode[rec.Code] = rec
		}
	}
	return t
}

// Fingerprint sha256 rút gọn của nội dung bảng thô
func Fingerprint(raw []reference.RawRecord) string {
	h := sha256.New()
	for _, r := range raw {
		for _, field := range []string{r.Code, r.BIN, r.Name, r.Region} {
			h.Write([]byte(field))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Len số bản ghi; bảng nil coi như rỗng
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records bản sao danh sách bản ghi theo thứ tự trong file
func (t *Table) Records() []*Record {
	if t == nil {
		return nil
	}
	out := make([]*Record, len(t.records))
	copy(out, t.records)
	return out
}

// ByCode tìm bản ghi theo mã (mã trùng: bản ghi đầu tiên)
func (t *Table) ByCode(code string) (*Record, bool) {
	if t == nil {
		return nil, false
	}
	rec, ok := t.byCode[code]
	return rec, ok
}

func (t *Table) Version() string {
	if t == nil {
		return ""
	}
	return t.version
}

func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}

func (t *Table) all() []*Record {
	if t == nil {
		return nil
	}
	return t.records
}
