package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"quiz_backend/internal/model"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/util"
	"strconv"

	"github.com/shopspring/decimal"
)

var exportHeader = []string{"id", "test_id", "user_id", "total_questions", "correct_answers", "percentage", "created_at"}

type ResultExportService struct {
	Results *repository.ResultRepository
	Storage *StorageService
}

func NewResultExportService(results *repository.ResultRepository, storage *StorageService) *ResultExportService {
	return &ResultExportService{Results: results, Storage: storage}
}

type ExportInfo struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Count    int    `json:"count"`
}

// FormatPercentage 保留两位小数
func FormatPercentage(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(2)
}

func WriteResultsCSV(buf *bytes.Buffer, results []model.Result) error {
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.ID,
			strconv.FormatUint(uint64(r.TestID), 10),
			strconv.FormatUint(uint64(r.UserID), 10),
			strconv.Itoa(r.TotalQuestions),
			strconv.Itoa(r.CorrectAnswers),
			FormatPercentage(r.Percentage),
			r.CreatedAt.Format(util.TimeFormat),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *ResultExportService) Export(ctx context.Context) (*ExportInfo, error) {
	results, err := s.Results.List(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteResultsCSV(&buf, results); err != nil {
		return nil, err
	}

	filename := "exports/results-" + model.GenerateUUID() + ".csv"
	url, err := s.Storage.Upload(ctx, filename, &buf, int64(buf.Len()), util.MimeCSV)
	if err != nil {
		return nil, err
	}

	return &ExportInfo{
		Filename: filename,
		URL:      url,
		Count:    len(results),
	}, nil
}
