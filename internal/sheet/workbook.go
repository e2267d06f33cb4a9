package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fisa/matjip-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	RestaurantSheet = "restaurants"
	ReviewSheet     = "reviews"

	// rootParent 최상위 리뷰의 parent_id 표기
	rootParent = "root"
	timeLayout = "2006-01-02 15:04:05"
)

var headers = map[string][]string{
	RestaurantSheet: {"id", "name", "category", "address", "cleaned_address", "lat", "lon", "url", "image_url", "added_by", "added_at"},
	ReviewSheet:     {"id", "target_type", "target_id", "user_id", "user", "rating", "comment", "parent_id", "timestamp"},
}

var sheetOrder = []string{RestaurantSheet, ReviewSheet}

// Record 헤더 이름 -> 셀 값
type Record map[string]string

// Workbook xlsx 파일 하나를 시트 단위로 통째로 읽고 교체하는 저장소
type Workbook struct {
	mu   sync.Mutex
	path string
}

// Open 파일이 없으면 빈 시트와 헤더로 새로 만든다
func Open(path string) (*Workbook, error) {
	w := &Workbook{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info("Creating spreadsheet store", logger.Fields{"path": path})
		if err := w.write(map[string][]Record{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}
	return w, nil
}

func (w *Workbook) Path() string {
	return w.path
}

// Records 시트 전체 읽기
func (w *Workbook) Records(sheet string) ([]Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables, err := w.readAll()
	if err != nil {
		return nil, err
	}
	return tables[sheet], nil
}

// Update 시트 전체를 읽고 fn 결과로 교체 (읽기-수정-쓰기를 한 락 안에서)
func (w *Workbook) Update(sheet string, fn func(records []Record) ([]Record, error)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables, err := w.readAll()
	if err != nil {
		return err
	}

	updated, err := fn(tables[sheet])
	if err != nil {
		return err
	}
	tables[sheet] = updated
	return w.write(tables)
}

// UpdateAll 여러 시트를 한 번의 저장으로 교체 (fn 이 실패하면 파일은 그대로)
func (w *Workbook) UpdateAll(fn func(tables map[string][]Record) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables, err := w.readAll()
	if err != nil {
		return err
	}
	if err := fn(tables); err != nil {
		return err
	}
	return w.write(tables)
}

func (w *Workbook) readAll() (map[string][]Record, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	tables := make(map[string][]Record, len(sheetOrder))
	for _, name := range sheetOrder {
		idx, err := f.GetSheetIndex(name)
		if err != nil || idx == -1 {
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}

		header := rows[0]
		records := make([]Record, 0, len(rows)-1)
		for _, row := range rows[1:] {
			if isBlank(row) {
				continue
			}
			rec := make(Record, len(header))
			for i, col := range header {
				if i < len(row) {
					rec[col] = row[i]
				}
			}
			records = append(records, rec)
		}
		tables[name] = records
	}
	return tables, nil
}

func (w *Workbook) write(tables map[string][]Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetOrder[0]); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range sheetOrder[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	for _, name := range sheetOrder {
		header := headers[name]
		if err := setRow(f, name, 1, header); err != nil {
			return err
		}
		for i, rec := range tables[name] {
			row := make([]string, len(header))
			for j, col := range header {
				row[j] = rec[col]
			}
			if err := setRow(f, name, i+2, row); err != nil {
				return err
			}
		}
	}

	// 임시 파일에 쓴 뒤 교체
	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".matjip-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp workbook: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", rowNum, sheet, err)
	}
	return nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func nextID(records []Record) uint {
	var max uint
	for _, rec := range records {
		if id := parseUint(rec["id"]); id > max {
			max = id
		}
	}
	return max + 1
}

func parseUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func formatUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatTime(t time.Time) string {
	return t.In(time.Local).Format(timeLayout)
}

// parseTime 손으로 편집한 시트의 "YYYY-MM-DD HH:MM" 도 허용
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04", time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
