// Package importer reads question banks from YAML and XLSX files.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"millionaire-service/internal/domain"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// columns is the expected XLSX header, case-insensitive.
var columns = []string{"level", "text", "answer1", "answer2", "answer3", "answer4"}

type yamlBank struct {
	Questions []domain.Question `yaml:"questions"`
}

// ReadFile picks the format from the file extension.
func ReadFile(path string) ([]domain.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported question file %q", path)
	}
}

// ReadYAML decodes a document of the form:
//
//	questions:
//	  - level: 0
//	    text: ...
//	    answer1: ... # correct
//	    answer2: ...
func ReadYAML(r io.Reader) ([]domain.Question, error) {
	var bank yamlBank
	if err := yaml.NewDecoder(r).Decode(&bank); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return bank.Questions, nil
}

// ReadXLSX reads the first sheet. The first row is a header naming the columns; answer1
// holds the correct answer.
func ReadXLSX(r io.Reader) ([]domain.Question, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer book.Close()

	rows, err := book.GetRows(book.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var questions []domain.Question
	for n, row := range rows[1:] {
		cell := func(name string) string {
			i := index[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if cell("text") == "" && cell("level") == "" {
			continue
		}
		level, err := strconv.Atoi(cell("level"))
		if err != nil {
			return nil, fmt.Errorf("row %d: level %q: %w", n+2, cell("level"), err)
		}
		questions = append(questions, domain.Question{
			Level:   level,
			Text:    cell("text"),
			Answer1: cell("answer1"),
			Answer2: cell("answer2"),
			Answer3: cell("answer3"),
			Answer4: cell("answer4"),
		})
	}
	return questions, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(columns))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range columns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("xlsx header is missing column %q", name)
		}
	}
	return index, nil
}
