// Package attendance keeps the attendance workbook: one row per person, one
// column per day, plus a shared Time column with the latest check-in time.
package attendance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kozaktomas/attendance/internal/facematch"
)

// Header and cell values written to the sheet.
const (
	NameHeader = "Name"
	TimeHeader = "Time"

	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

var (
	ErrPersonNotFound  = errors.New("person not found in attendance sheet")
	ErrSheetMissing    = errors.New("attendance sheet not found in workbook")
	ErrWorkbookMissing = errors.New("attendance workbook does not exist")
)

// Workbook is an attendance file on disk. Every operation opens the file,
// applies its change and saves it again, so external edits between calls
// are preserved.
type Workbook struct {
	path  string
	sheet string
	mu    sync.Mutex
}

func NewWorkbook(path, sheet string) *Workbook {
	return &Workbook{path: path, sheet: sheet}
}

func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) Sheet() string {
	return w.sheet
}

// Exists reports whether the workbook file is present.
func (w *Workbook) Exists() bool {
	_, err := os.Stat(w.path)
	return err == nil
}

// PrepareResult describes what Prepare changed.
type PrepareResult struct {
	Created     bool // the file or sheet was created
	DateAdded   bool // the day's column was added
	PeopleAdded int  // rows appended for enrolled people missing from the sheet
}

// Prepare makes sure the sheet lists every person. A new sheet gets the
// header [Name, day] and one row per person in sorted order. With fillAbsent
// a newly added day column is filled with ABSENT for every existing row and
// new rows are written as ABSENT.
func (w *Workbook) Prepare(people []string, day time.Time, fillAbsent bool) (PrepareResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var res PrepareResult

	t, created, err := w.open(true)
	if err != nil {
		return res, err
	}
	defer t.close()

	date := day.Format(DateLayout)
	sorted := append([]string(nil), people...)
	sort.Strings(sorted)

	if created || len(t.header()) == 0 {
		res.Created = true
		res.DateAdded = true
		if err := t.set(1, 1, NameHeader); err != nil {
			return res, err
		}
		if err := t.set(2, 1, date); err != nil {
			return res, err
		}
		for i, name := range sorted {
			if err := t.set(1, i+2, name); err != nil {
				return res, err
			}
			if fillAbsent {
				if err := t.set(2, i+2, StatusAbsent); err != nil {
					return res, err
				}
			}
		}
		res.PeopleAdded = len(sorted)
		return res, w.save(t)
	}

	dateCol := t.column(date)
	if dateCol == 0 && fillAbsent {
		if dateCol, err = t.appendColumn(date); err != nil {
			return res, err
		}
		res.DateAdded = true
		for row := 2; row <= len(t.rows); row++ {
			if err := t.set(dateCol, row, StatusAbsent); err != nil {
				return res, err
			}
		}
	}

	for _, name := range sorted {
		if t.findRow(name) != 0 {
			continue
		}
		row := len(t.rows) + 1
		if err := t.set(1, row, name); err != nil {
			return res, err
		}
		if fillAbsent && dateCol != 0 {
			if err := t.set(dateCol, row, StatusAbsent); err != nil {
				return res, err
			}
		}
		res.PeopleAdded++
	}

	if !res.DateAdded && res.PeopleAdded == 0 {
		return res, nil
	}
	return res, w.save(t)
}

// MarkPresent writes PRESENT under the day of at and the check-in time under
// the Time column for the first row named name. Missing date and Time headers
// are appended first and saved even when the person is not in the sheet, in
// which case ErrPersonNotFound is returned.
func (w *Workbook) MarkPresent(name string, at time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, created, err := w.open(true)
	if err != nil {
		return err
	}
	defer t.close()

	if created || len(t.header()) == 0 {
		if err := t.set(1, 1, NameHeader); err != nil {
			return err
		}
	}

	dateCol, err := t.ensureColumn(at.Format(DateLayout))
	if err != nil {
		return err
	}
	timeCol, err := t.ensureColumn(TimeHeader)
	if err != nil {
		return err
	}

	row := t.findRow(name)
	if row == 0 {
		if err := w.save(t); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrPersonNotFound, name)
	}

	if err := t.set(dateCol, row, StatusPresent); err != nil {
		return err
	}
	if err := t.set(timeCol, row, at.Format(TimeLayout)); err != nil {
		return err
	}
	return w.save(t)
}

// Entry is one person's attendance on a given day.
type Entry struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Time   string `json:"time,omitempty"`
}

// Day returns every row's status for date. A missing date column yields empty
// statuses. The shared Time value is reported only for PRESENT rows.
func (w *Workbook) Day(date string) ([]Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, _, err := w.open(false)
	if err != nil {
		return nil, err
	}
	defer t.close()

	dateCol := t.column(date)
	timeCol := t.column(TimeHeader)

	entries := []Entry{}
	for row := 2; row <= len(t.rows); row++ {
		name := t.cell(1, row)
		if name == "" {
			continue
		}
		e := Entry{Name: name}
		if dateCol != 0 {
			e.Status = t.cell(dateCol, row)
		}
		if e.Status == StatusPresent && timeCol != 0 {
			e.Time = t.cell(timeCol, row)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Dates returns the date headers in column order.
func (w *Workbook) Dates() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, _, err := w.open(false)
	if err != nil {
		return nil, err
	}
	defer t.close()

	dates := []string{}
	for _, h := range t.header() {
		if _, err := time.Parse(DateLayout, h); err == nil {
			dates = append(dates, h)
		}
	}
	return dates, nil
}

// open loads the workbook. With create, a missing file or sheet is created in
// memory and created is true; without it ErrWorkbookMissing or
// ErrSheetMissing is returned.
func (w *Workbook) open(create bool) (*table, bool, error) {
	f, err := excelize.OpenFile(w.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if !create {
			return nil, false, fmt.Errorf("%w: %s", ErrWorkbookMissing, w.path)
		}
		f = excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to name sheet: %w", err)
		}
		return &table{f: f, sheet: w.sheet}, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to open workbook %s: %w", w.path, err)
	}

	idx, err := f.GetSheetIndex(w.sheet)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("failed to look up sheet: %w", err)
	}
	if idx == -1 {
		if !create {
			f.Close()
			return nil, false, fmt.Errorf("%w: %s", ErrSheetMissing, w.sheet)
		}
		if _, err := f.NewSheet(w.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("failed to create sheet: %w", err)
		}
		return &table{f: f, sheet: w.sheet}, true, nil
	}

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("failed to read sheet: %w", err)
	}
	return &table{f: f, sheet: w.sheet, rows: rows}, false, nil
}

// save writes the workbook to a temporary file next to it and renames it into
// place. The permissions of an existing workbook are kept; new files get 0644.
func (w *Workbook) save(t *table) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(w.path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".attendance-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary workbook: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set workbook permissions: %w", err)
	}

	if _, err := t.f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

// table is an open sheet with an in-memory copy of its rows that is kept in
// sync with every write.
type table struct {
	f     *excelize.File
	sheet string
	rows  [][]string
}

func (t *table) close() {
	t.f.Close()
}

func (t *table) header() []string {
	if len(t.rows) == 0 {
		return nil
	}
	return t.rows[0]
}

// cell returns the value at a 1-based column and row, or "" if unset.
func (t *table) cell(col, row int) string {
	if row < 1 || row > len(t.rows) || col < 1 || col > len(t.rows[row-1]) {
		return ""
	}
	return t.rows[row-1][col-1]
}

func (t *table) set(col, row int, value string) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := t.f.SetCellValue(t.sheet, name, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}

	for len(t.rows) < row {
		t.rows = append(t.rows, nil)
	}
	for len(t.rows[row-1]) < col {
		t.rows[row-1] = append(t.rows[row-1], "")
	}
	t.rows[row-1][col-1] = value
	return nil
}

// column returns the 1-based column of a header, or 0 if it is missing.
func (t *table) column(header string) int {
	for i, h := range t.header() {
		if h == header {
			return i + 1
		}
	}
	return 0
}

func (t *table) appendColumn(header string) (int, error) {
	col := len(t.header()) + 1
	if err := t.set(col, 1, header); err != nil {
		return 0, err
	}
	return col, nil
}

func (t *table) ensureColumn(header string) (int, error) {
	if col := t.column(header); col != 0 {
		return col, nil
	}
	return t.appendColumn(header)
}

// findRow returns the 1-based row of the first person named name, comparing
// exactly first and by normalized name second. Returns 0 when missing.
func (t *table) findRow(name string) int {
	for row := 2; row <= len(t.rows); row++ {
		if t.cell(1, row) == name {
			return row
		}
	}
	for row := 2; row <= len(t.rows); row++ {
		if c := t.cell(1, row); c != "" && facematch.SamePerson(c, name) {
			return row
		}
	}
	return 0
}
