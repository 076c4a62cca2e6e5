package service

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/movieranker/movieranker-backend/internal/app/repository"
	"github.com/movieranker/movieranker-backend/pkg/logger"
	"github.com/movieranker/movieranker-backend/pkg/mailer"
	"github.com/xuri/excelize/v2"
)

// ErrNoMoviesToShare is returned when the owner's list is empty, so the
// caller can short-circuit before touching the email transport.
var ErrNoMoviesToShare = errors.New("no movies to share")

// ShareDocument is a rendered, ready-to-send copy of a user's ranked list
type ShareDocument struct {
	Subject  string
	BodyHTML string
}

type shareRow struct {
	Name        string
	Genre       string
	ReleaseYear int
	Score       int
}

var shareTemplate = template.Must(template.New("share").Parse(`
<h2 style="text-align: center">My Movie List</h2>
<p style="text-align: center">Here's my list of favourite movies:</p>
<table style="border-collapse: collapse; margin: 25px auto; font-size: 0.9em; font-family: sans-serif; min-width: 400px; box-shadow: 0 0 20px rgba(0, 0, 0, 0.15);">
    <thead>
        <tr style="background-color: #009879; color: #ffffff; text-align: left;">
            <th style="padding: 1rem;">Movie Name</th>
            <th style="padding: 1rem;">Genre</th>
            <th style="padding: 1rem;">Release Year</th>
            <th style="padding: 1rem;">Score</th>
        </tr>
    </thead>
    <tbody>
{{- range . }}
        <tr style="border-bottom: 1px solid black;">
            <td style="padding: 1rem;">{{ .Name }}</td>
            <td style="padding: 1rem;">{{ .Genre }}</td>
            <td style="padding: 1rem; text-align: center;">{{ .ReleaseYear }}</td>
            <td style="padding: 1rem; text-align: center;">{{ .Score }}</td>
        </tr>
{{- end }}
    </tbody>
</table>
`))

type ShareService interface {
	// BuildShareDocument is a pure transform: it reads the ranked list and
	// renders it, nothing more.
	BuildShareDocument(ownerID uint) (*ShareDocument, error)
	ShareToEmail(ownerID uint, recipient string) error
	BuildShareWorkbook(ownerID uint) (*excelize.File, error)
}

type shareService struct {
	movieRepo repository.MovieRepository
	sender    mailer.Sender
}

func NewShareService(movieRepo repository.MovieRepository, sender mailer.Sender) ShareService {
	return &shareService{
		movieRepo: movieRepo,
		sender:    sender,
	}
}

func (s *shareService) rankedRows(ownerID uint) ([]shareRow, error) {
	movies, err := s.movieRepo.FindWithFilter(repository.MovieFilter{OwnerID: &ownerID})
	if err != nil {
		logger.Error("Failed to load movies for sharing", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrNoMoviesToShare
	}

	rows := make([]shareRow, 0, len(movies))
	for _, m := range movies {
		rows = append(rows, shareRow{
			Name:        m.MovieName,
			Genre:       m.Genre,
			ReleaseYear: m.ReleaseDate.Year(),
			Score:       m.Score,
		})
	}
	return rows, nil
}

func (s *shareService) BuildShareDocument(ownerID uint) (*ShareDocument, error) {
	logger.Debug("Building share document", map[string]interface{}{
		"owner_id": ownerID,
	})

	rows, err := s.rankedRows(ownerID)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := shareTemplate.Execute(&body, rows); err != nil {
		logger.Error("Failed to render share document", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}

	return &ShareDocument{
		Subject:  "My Movies List",
		BodyHTML: body.String(),
	}, nil
}

func (s *shareService) ShareToEmail(ownerID uint, recipient string) error {
	logger.Info("Sharing movie list via email", map[string]interface{}{
		"owner_id": ownerID,
	})

	doc, err := s.BuildShareDocument(ownerID)
	if err != nil {
		return err
	}

	if err := s.sender.Send(recipient, doc.Subject, doc.BodyHTML); err != nil {
		logger.Error("Failed to send share email", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return fmt.Errorf("%w: %v", mailer.ErrDelivery, err)
	}

	logger.Info("Movie list shared", map[string]interface{}{
		"owner_id": ownerID,
	})
	return nil
}

// BuildShareWorkbook renders the same rows as an XLSX download
func (s *shareService) BuildShareWorkbook(ownerID uint) (*excelize.File, error) {
	logger.Debug("Building share workbook", map[string]interface{}{
		"owner_id": ownerID,
	})

	rows, err := s.rankedRows(ownerID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"Movie Name", "Genre", "Release Year", "Score"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.Genre)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), row.ReleaseYear)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), row.Score)
	}

	return f, nil
}
