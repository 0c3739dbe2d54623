// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package compute

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	pqLocal "github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	pqReader "github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/types"
	"go.uber.org/zap"

	"github.com/daviszhen/hashagg/pkg/chunk"
	"github.com/daviszhen/hashagg/pkg/common"
	"github.com/daviszhen/hashagg/pkg/util"
)

// ChunkSource replays a list of chunks. The chunks are shared with the
// caller, not copied.
type ChunkSource struct {
	_types    []common.LType
	_chunks   []*chunk.Chunk
	_next   int
	_closed bool
}

var _ Source = &ChunkSource{}

func NewChunkSource(types []common.LType, chunks ...*chunk.Chunk) *ChunkSource {
	return &ChunkSource{
		_types:  common.CopyLTypes(types...),
		_chunks: chunks,
	}
}

func (src *ChunkSource) Execute(ctx context.Context, output *chunk.Chunk) (OperatorResult, error) {
	if src._closed {
		return InvalidOpResult, errors.New("chunk source is closed")
	}
	if err := util.CheckRun(util.FAULTS_SCOPE_EXEC, FaultChunkSourceNext); err != nil {
		return InvalidOpResult, err
	}
	if src._next >= len(src._chunks) {
		output.Count = 0
		return Done, nil
	}
	assignChunk(output, src._chunks[src._next])
	src._next++
	return haveMoreOutput, nil
}

func (src *ChunkSource) Types() []common.LType {
	return src._types
}

func (src *ChunkSource) Close() error {
	src._closed = true
	return nil
}

func (src *ChunkSource) String() string {
	return fmt.Sprintf("ChunkSource(%d chunks)", len(src._chunks))
}

// CsvSource reads a delimited text file. An empty field is NULL.
type CsvSource struct {
	_path     string
	_columns  []Column
	_types    []common.LType
	_file     *os.File
	_reader   *csv.Reader
	_colIdx   []int
	_line     int
	_rowCnt   int
	_finished bool
}

var _ Source = &CsvSource{}

// NewCsvSource opens path. With headLine set the first record names the
// fields and columns are matched by name, otherwise by position.
func NewCsvSource(path string, columns []Column, delimiter rune, headLine bool) (*CsvSource, error) {
	if len(columns) == 0 {
		return nil, errors.New("csv source needs at least one column")
	}
	file, err := os.OpenFile(path, os.O_RDONLY, 0755)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	src := &CsvSource{
		_path:    path,
		_columns: columns,
		_types:   columnTypes(columns),
		_file:    file,
		_reader:  reader,
		_colIdx:  make([]int, len(columns)),
	}
	for i := range columns {
		src._colIdx[i] = i
	}
	if headLine {
		head, err := reader.Read()
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("read head line of %s: %w", path, err)
		}
		src._line++
		for i, col := range columns {
			idx := indexOfName(head, col.Name)
			if idx < 0 {
				_ = file.Close()
				return nil, fmt.Errorf("no such column %s in %s", col.Name, path)
			}
			src._colIdx[i] = idx
		}
	}
	return src, nil
}

func indexOfName(names []string, name string) int {
	for i, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return i
		}
	}
	return -1
}

func (src *CsvSource) Execute(ctx context.Context, output *chunk.Chunk) (OperatorResult, error) {
	if src._finished {
		output.Count = 0
		return Done, nil
	}
	readed := &chunk.Chunk{}
	readed.Init(src._types, util.DefaultVectorSize)
	rowCnt := 0
	for rowCnt < util.DefaultVectorSize {
		line, err := src._reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				src._finished = true
				break
			}
			return InvalidOpResult, err
		}
		src._line++
		for j, idx := range src._colIdx {
			if idx >= len(line) {
				return InvalidOpResult, fmt.Errorf("%s line %d: no enough fields", src._path, src._line)
			}
			val, err := fieldToValue(line[idx], src._types[j])
			if err != nil {
				return InvalidOpResult, fmt.Errorf("%s line %d column %s: %w", src._path, src._line, src._columns[j].Name, err)
			}
			readed.Data[j].SetValue(rowCnt, val)
		}
		rowCnt++
	}
	if rowCnt == 0 {
		output.Count = 0
		return Done, nil
	}
	readed.SetCard(rowCnt)
	src._rowCnt += rowCnt
	assignChunk(output, readed)
	return haveMoreOutput, nil
}

func fieldToValue(field string, lTyp common.LType) (*chunk.Value, error) {
	if field == "" {
		return chunk.NewNullValue(lTyp), nil
	}
	if lTyp.Id == common.LTID_VARCHAR {
		return chunk.NewVarcharValue(field), nil
	}
	return CastValue(chunk.NewVarcharValue(field), lTyp)
}

func (src *CsvSource) Types() []common.LType {
	return src._types
}

func (src *CsvSource) Close() error {
	util.Debug("csv source closed",
		zap.String("path", src._path),
		zap.Int("rows", src._rowCnt),
	)
	src._reader = nil
	return src._file.Close()
}

func (src *CsvSource) String() string {
	return fmt.Sprintf("CsvSource(%s)", src._path)
}

// ParquetSource reads the named columns of a local parquet file.
type ParquetSource struct {
	_path     string
	_columns  []Column
	_types    []common.LType
	_pqFile   source.ParquetFile
	_pqReader *pqReader.ParquetReader
	_colIdx   []int
	_decScale []int
	_numRows  int64
	_rowCnt   int64
}

var _ Source = &ParquetSource{}

func NewParquetSource(path string, columns []Column) (*ParquetSource, error) {
	if len(columns) == 0 {
		return nil, errors.New("parquet source needs at least one column")
	}
	pqFile, err := pqLocal.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	reader, err := pqReader.NewParquetColumnReader(pqFile, 1)
	if err != nil {
		_ = pqFile.Close()
		return nil, err
	}
	src := &ParquetSource{
		_path:     path,
		_columns:  columns,
		_types:    columnTypes(columns),
		_pqFile:   pqFile,
		_pqReader: reader,
		_colIdx:   make([]int, len(columns)),
		_decScale: make([]int, len(columns)),
		_numRows:  reader.GetNumRows(),
	}
	for i, col := range columns {
		idx := parquetColumnIndex(reader.SchemaHandler.ValueColumns, col.Name)
		if idx < 0 {
			_ = src.Close()
			return nil, fmt.Errorf("no such column %s in %s", col.Name, path)
		}
		src._colIdx[i] = idx
		src._decScale[i] = parquetDecimalScale(reader, idx)
	}
	return src, nil
}

// parquetDecimalScale returns the scale of a DECIMAL annotated leaf
// column, or -1 for any other column.
func parquetDecimalScale(reader *pqReader.ParquetReader, idx int) int {
	sh := reader.SchemaHandler
	pos, ok := sh.MapIndex[sh.ValueColumns[idx]]
	if !ok || int(pos) >= len(sh.SchemaElements) {
		return -1
	}
	se := sh.SchemaElements[pos]
	if se.IsSetConvertedType() && se.GetConvertedType() == parquet.ConvertedType_DECIMAL ||
		se.IsSetLogicalType() && se.GetLogicalType().IsSetDECIMAL() {
		return int(se.GetScale())
	}
	return -1
}

// parquetColumnIndex matches name against the last segment of the
// schema paths of the leaf columns.
func parquetColumnIndex(paths []string, name string) int {
	for i, path := range paths {
		leaf := path
		if pos := strings.LastIndexByte(path, '\x01'); pos >= 0 {
			leaf = path[pos+1:]
		}
		if strings.EqualFold(leaf, name) {
			return i
		}
	}
	return -1
}

func (src *ParquetSource) Execute(ctx context.Context, output *chunk.Chunk) (OperatorResult, error) {
	if src._rowCnt >= src._numRows {
		output.Count = 0
		return Done, nil
	}
	maxCnt := min(int64(util.DefaultVectorSize), src._numRows-src._rowCnt)
	readed := &chunk.Chunk{}
	readed.Init(src._types, int(maxCnt))
	rowCnt := -1
	for j, idx := range src._colIdx {
		values, _, _, err := src._pqReader.ReadColumnByIndex(int64(idx), maxCnt)
		if err != nil && !errors.Is(err, io.EOF) {
			return InvalidOpResult, err
		}
		if rowCnt < 0 {
			rowCnt = len(values)
		} else if len(values) != rowCnt {
			return InvalidOpResult, fmt.Errorf("column %s has %d values, previous columns have %d",
				src._columns[j].Name, len(values), rowCnt)
		}
		vec := readed.Data[j]
		for i, field := range values {
			val, err := parquetColToValue(field, vec.Typ(), src._decScale[j])
			if err != nil {
				return InvalidOpResult, fmt.Errorf("%s column %s: %w", src._path, src._columns[j].Name, err)
			}
			vec.SetValue(i, val)
		}
	}
	if rowCnt <= 0 {
		src._rowCnt = src._numRows
		output.Count = 0
		return Done, nil
	}
	readed.SetCard(rowCnt)
	src._rowCnt += int64(rowCnt)
	assignChunk(output, readed)
	return haveMoreOutput, nil
}

// parquetColToValue converts one parquet field. decScale is the scale of a
// DECIMAL annotated column, -1 otherwise.
func parquetColToValue(field any, lTyp common.LType, decScale int) (*chunk.Value, error) {
	if field == nil {
		return chunk.NewNullValue(lTyp), nil
	}
	switch lTyp.Id {
	case common.LTID_INTEGER, common.LTID_BIGINT, common.LTID_UBIGINT:
		var i int64
		switch fVal := field.(type) {
		case int32:
			i = int64(fVal)
		case int64:
			i = fVal
		default:
			return nil, parquetCastErr(field, lTyp)
		}
		return castFromInt(chunk.NewBigintValue(i), i, lTyp)
	case common.LTID_DOUBLE:
		switch fVal := field.(type) {
		case float32:
			return chunk.NewDoubleValue(float64(fVal)), nil
		case float64:
			return chunk.NewDoubleValue(fVal), nil
		case int32:
			return chunk.NewDoubleValue(float64(fVal)), nil
		case int64:
			return chunk.NewDoubleValue(float64(fVal)), nil
		}
	case common.LTID_VARCHAR:
		if fVal, ok := field.(string); ok {
			return chunk.NewVarcharValue(fVal), nil
		}
	case common.LTID_BOOLEAN:
		if fVal, ok := field.(bool); ok {
			return chunk.NewBooleanValue(fVal), nil
		}
	case common.LTID_DATE:
		if fVal, ok := field.(int32); ok {
			d := time.Date(1970, 1, int(1+fVal), 0, 0, 0, 0, time.UTC)
			return chunk.NewDateValue(common.DateFromTime(d)), nil
		}
	case common.LTID_DECIMAL:
		var dec common.Decimal
		var err error
		scale := max(decScale, 0)
		switch fVal := field.(type) {
		case int32:
			dec, err = common.DecimalFromScaled(int64(fVal), scale)
		case int64:
			dec, err = common.DecimalFromScaled(fVal, scale)
		case string:
			if decScale < 0 {
				dec, err = common.ParseDecimal(fVal)
				break
			}
			//big endian two's complement unscaled value
			if len(fVal) == 0 {
				return nil, parquetCastErr(field, lTyp)
			}
			dec, err = common.ParseDecimal(types.DECIMAL_BYTE_ARRAY_ToString([]byte(fVal), lTyp.Width, decScale))
		default:
			return nil, parquetCastErr(field, lTyp)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCast, err)
		}
		return chunk.NewDecimalValue(lTyp, dec)
	}
	return nil, parquetCastErr(field, lTyp)
}

func parquetCastErr(field any, lTyp common.LType) error {
	return fmt.Errorf("%w: parquet %T to %v", ErrInvalidCast, field, lTyp)
}

func (src *ParquetSource) Types() []common.LType {
	return src._types
}

func (src *ParquetSource) Close() error {
	util.Debug("parquet source closed",
		zap.String("path", src._path),
		zap.Int64("rows", src._rowCnt),
	)
	src._pqReader.ReadStop()
	return src._pqFile.Close()
}

func (src *ParquetSource) String() string {
	return fmt.Sprintf("ParquetSource(%s)", src._path)
}
