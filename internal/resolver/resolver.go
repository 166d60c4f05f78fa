package resolver

import (
	"sync/atomic"

	"github.com/ugd-resolver/internal/parser"
	"go.uber.org/zap"
)

// Resolution kết quả đầy đủ của một lần resolve (dùng cho explain/debug)
type Resolution struct {
	Query        string                     `json:"query"`
	Parsed       *parser.ParsedAddressInput `json:"parsed"`
	Candidates   []MatchCandidate           `json:"candidates,omitempty"`
	Selected     *MatchCandidate            `json:"selected,omitempty"`
	TableVersion string                     `json:"table_version"`
}

// Record bản ghi được chọn hoặc nil
func (r *Resolution) Record() *Record {
	if r == nil || r.Selected == nil {
		return nil
	}
	return r.Selected.Record
}

// Resolver tìm cơ quan thuế cho chuỗi địa danh.
// Bảng tham chiếu được giữ qua atomic.Pointer: mỗi lần resolve dùng một snapshot,
// reload thay cả bảng bằng Swap.
type Resolver struct {
	table  atomic.Pointer[Table]
	parser *parser.AddressParser
	logger *zap.Logger
}

// NewResolver tạo mới Resolver; table có thể nil (mọi truy vấn trả về nil)
func NewResolver(table *Table, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		parser: parser.DefaultParser(),
		logger: logger,
	}
	r.table.Store(table)
	return r
}

// Swap thay bảng tham chiếu, trả về bảng cũ. Các resolve đang chạy vẫn dùng bảng cũ.
func (r *Resolver) Swap(table *Table) *Table {
	old := r.table.Swap(table)
	r.logger.Info("Đã thay bảng tham chiếu",
		zap.String("old_version", old.Version()),
		zap.String("new_version", table.Version()),
		zap.Int("records", table.Len()))
	return old
}

// Table snapshot bảng hiện tại
func (r *Resolver) Table() *Table {
	return r.table.Load()
}

// Resolve trả về bản ghi khớp nhất hoặc nil
func (r *Resolver) Resolve(query string) *Record {
	return r.Explain(query).Record()
}

// Explain như Resolve nhưng trả về cả input đã parse và danh sách ứng viên đã xếp hạng
func (r *Resolver) Explain(query string) *Resolution {
	table := r.table.Load()
	parsed := r.parser.Parse(query)

	res := &Resolution{
		Query:        query,
		Parsed:       parsed,
		TableVersion: table.Version(),
	}

	if table.Len() == 0 {
		r.logger.Warn("Bảng tham chiếu rỗng, không thể resolve", zap.String("query", query))
		return res
	}
	if parsed.Empty() {
		return res
	}

	res.Candidates = Rank(ScoreAll(table.all(), parsed))
	res.Selected = selectRanked(res.Candidates, parsed)

	if r.logger.Core().Enabled(zap.DebugLevel) {
		fields := []zap.Field{
			zap.String("query", query),
			zap.Strings("terms", parsed.AllTerms),
			zap.Int("candidates", len(res.Candidates)),
		}
		if res.Selected != nil {
			fields = append(fields,
				zap.String("code", res.Selected.Record.Code),
				zap.Int("score", res.Selected.Score))
		}
		r.logger.Debug("Kết quả resolve", fields...)
	}
	return res
}
