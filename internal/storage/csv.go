package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
)

var ErrResponsesNotFound = errors.New("no responses stored for form")

// CSVStore keeps one CSV file of completed sessions per form.
type CSVStore struct {
	dir string
	mu  sync.Mutex
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

func (s *CSVStore) Dir() string {
	return s.dir
}

// Path returns the CSV file of a form.
func (s *CSVStore) Path(formName string) string {
	return filepath.Join(s.dir, SanitizeFormName(formName)+".csv")
}

// Append adds one row to the form's file. The header is written only when the
// file is created; later rows are laid out in the existing header's order.
func (s *CSVStore) Append(formName string, row survey.PersistedRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create responses directory: %w", err)
	}
	path := s.Path(formName)

	header, err := readHeader(path)
	newFile := errors.Is(err, os.ErrNotExist)
	if err != nil && !newFile {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := row.Record()
	if newFile || len(header) == 0 {
		if err := w.Write(row.Columns); err != nil {
			return "", fmt.Errorf("failed to write CSV header: %w", err)
		}
	} else {
		record = make([]string, len(header))
		for i, col := range header {
			record[i] = row.Values[col]
		}
	}
	if err := w.Write(record); err != nil {
		return "", fmt.Errorf("failed to write CSV row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush CSV: %w", err)
	}
	return path, nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header of %s: %w", path, err)
	}
	return header, nil
}

// Table is the raw content of a responses file.
type Table struct {
	Header  []string
	Records [][]string
}

// Load reads the form's file.
func (s *CSVStore) Load(formName string) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LoadTable(s.Path(formName))
}

// ReadFile returns the form's file as stored.
func (s *CSVStore) ReadFile(formName string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.Path(formName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrResponsesNotFound, filepath.Base(path))
	}
	return data, err
}

// LoadTable reads a responses file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrResponsesNotFound, filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: rows[0], Records: rows[1:]}, nil
}

// Sessions rebuilds the stored answers of each row against questions.
// Malformed checkbox cells come back as empty sets; their errors are joined
// into the returned error alongside the usable stores.
func (t *Table) Sessions(questions models.QuestionSet) ([]*survey.ResponseStore, error) {
	stores := make([]*survey.ResponseStore, 0, len(t.Records))
	var errs []error
	for i, record := range t.Records {
		store, err := survey.FromRecord(questions, t.Header, record)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
		}
		stores = append(stores, store)
	}
	return stores, errors.Join(errs...)
}

// Questions infers a question set from the header when the original one is
// unavailable. Every column becomes a ShortAnswer question.
func (t *Table) Questions() models.QuestionSet {
	qs := make(models.QuestionSet, len(t.Header))
	for i, h := range t.Header {
		qs[i] = models.Question{Text: h, Type: models.ShortAnswer}
	}
	return qs
}
