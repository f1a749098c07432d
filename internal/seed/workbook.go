// Package seed turns a vocabulary workbook into the first snapshot a fresh
// server hands out.
//
// The workbook has a "Words" sheet with the columns
//
//	category | english | turkish | example sentence | pronunciation | difficulty
//
// and optional "Categories" (name | description | image) and "Quizzes"
// (category | title | description | difficulty) sheets. The first row of
// every sheet is a header. Categories referenced only from Words or
// Quizzes are created on the fly.
package seed

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/wordmaster/internal/client/models"
	"github.com/dmitrijs2005/wordmaster/internal/client/snapshot"
	"github.com/xuri/excelize/v2"
)

const (
	SheetWords      = "Words"
	SheetCategories = "Categories"
	SheetQuizzes    = "Quizzes"
)

var ErrNoWords = errors.New("workbook has no words")

// ReadWorkbook parses the workbook at path into a validated document
// stamped with exportedAt.
func ReadWorkbook(path string, exportedAt models.UnixTime) (*snapshot.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	b := newBuilder(exportedAt)
	sheets := f.GetSheetList()

	if slices.Contains(sheets, SheetCategories) {
		rows, err := f.GetRows(SheetCategories)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", SheetCategories, err)
		}
		if err := eachRow(SheetCategories, rows, b.addCategory); err != nil {
			return nil, err
		}
	}

	if !slices.Contains(sheets, SheetWords) {
		return nil, fmt.Errorf("sheet %q not found", SheetWords)
	}
	rows, err := f.GetRows(SheetWords)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SheetWords, err)
	}
	if err := eachRow(SheetWords, rows, b.addWord); err != nil {
		return nil, err
	}

	if slices.Contains(sheets, SheetQuizzes) {
		rows, err := f.GetRows(SheetQuizzes)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", SheetQuizzes, err)
		}
		if err := eachRow(SheetQuizzes, rows, b.addQuiz); err != nil {
			return nil, err
		}
	}

	if len(b.doc.Words) == 0 {
		return nil, ErrNoWords
	}
	if err := b.doc.Validate(); err != nil {
		return nil, err
	}
	return b.doc, nil
}

// eachRow calls fn for every non-blank row after the header. Errors carry
// the spreadsheet row number.
func eachRow(sheet string, rows [][]string, fn func([]string) error) error {
	for i, r := range rows {
		if i == 0 || strings.TrimSpace(strings.Join(r, "")) == "" {
			continue
		}
		if err := fn(r); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func difficulty(s string) (int, error) {
	if s == "" {
		return models.DifficultyEasy, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < models.DifficultyEasy || n > models.DifficultyHard {
		return 0, fmt.Errorf("difficulty %q must be 1, 2 or 3", s)
	}
	return n, nil
}

type builder struct {
	doc        *snapshot.Document
	categories map[string]int64
	words      map[string]struct{}
}

func newBuilder(exportedAt models.UnixTime) *builder {
	return &builder{
		doc:        snapshot.New(exportedAt),
		categories: make(map[string]int64),
		words:      make(map[string]struct{}),
	}
}

func (b *builder) category(name string) int64 {
	key := strings.ToLower(name)
	if id, ok := b.categories[key]; ok {
		return id
	}
	id := int64(len(b.doc.Categories) + 1)
	b.doc.Categories = append(b.doc.Categories, models.Category{ID: id, Name: name})
	b.categories[key] = id
	return id
}

func (b *builder) addCategory(row []string) error {
	name := cell(row, 0)
	if name == "" {
		return errors.New("category name is empty")
	}
	if _, ok := b.categories[strings.ToLower(name)]; ok {
		return fmt.Errorf("duplicate category %q", name)
	}
	id := b.category(name)
	c := &b.doc.Categories[id-1]
	c.Description = cell(row, 1)
	c.Image = cell(row, 2)
	return c.Validate()
}

func (b *builder) addWord(row []string) error {
	cat := cell(row, 0)
	if cat == "" {
		return errors.New("category is empty")
	}
	d, err := difficulty(cell(row, 5))
	if err != nil {
		return err
	}
	w := models.Word{
		ID:              int64(len(b.doc.Words) + 1),
		CategoryID:      b.category(cat),
		English:         cell(row, 1),
		Turkish:         cell(row, 2),
		ExampleSentence: cell(row, 3),
		Pronunciation:   cell(row, 4),
		Difficulty:      d,
	}
	if err := w.Validate(); err != nil {
		return err
	}
	key := fmt.Sprintf("%d/%s", w.CategoryID, strings.ToLower(w.English))
	if _, ok := b.words[key]; ok {
		return fmt.Errorf("duplicate word %q in %q", w.English, cat)
	}
	b.words[key] = struct{}{}
	b.doc.Words = append(b.doc.Words, w)
	return nil
}

func (b *builder) addQuiz(row []string) error {
	cat := cell(row, 0)
	if cat == "" {
		return errors.New("category is empty")
	}
	d, err := difficulty(cell(row, 3))
	if err != nil {
		return err
	}
	q := models.Quiz{
		ID:          int64(len(b.doc.Quizzes) + 1),
		CategoryID:  b.category(cat),
		Title:       cell(row, 1),
		Description: cell(row, 2),
		Difficulty:  d,
	}
	if err := q.Validate(); err != nil {
		return err
	}
	b.doc.Quizzes = append(b.doc.Quizzes, q)
	return nil
}
