package core

// resultBuilder accumulates per-row outcomes for one file.
// Rows are reported strictly in file order, so skips stay sorted by index.
type resultBuilder struct {
	fileName string
	total    int
	inserted int
	skipped  []SkippedRecord
}

func newResultBuilder(fileName string) *resultBuilder {
	return &resultBuilder{fileName: fileName, skipped: []SkippedRecord{}}
}

// next counts a data row read from the file and returns its 1-based index.
func (b *resultBuilder) next() int {
	b.total++
	return b.total
}

func (b *resultBuilder) insert() { b.inserted++ }

func (b *resultBuilder) skip(index int, msg string) SkippedRecord {
	rec := SkippedRecord{RecordIndex: index, Message: msg}
	b.skipped = append(b.skipped, rec)
	return rec
}

func (b *resultBuilder) result() LoadResult {
	return LoadResult{
		FileName:        b.fileName,
		TotalRecords:    b.total,
		InsertedRecords: b.inserted,
		SkippedRecords:  b.skipped,
	}
}
