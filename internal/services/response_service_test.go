package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/SAP-F-2025/survey-assistant/internal/formfill"
	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories/memory"
	"github.com/SAP-F-2025/survey-assistant/internal/source"
	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func completeOne(t *testing.T, env *testEnv, answers map[int]models.ResponseValue) {
	t.Helper()
	ctx := context.Background()
	s, err := env.svc.Start(ctx, &StartSessionRequest{FormURL: partyURL})
	require.NoError(t, err)
	for idx, v := range answers {
		_, err = env.svc.Answer(ctx, s.ID, idx, v)
		require.NoError(t, err)
	}
	_, err = env.svc.Finish(ctx, s.ID)
	require.NoError(t, err)
	_, err = env.svc.Complete(ctx, s.ID)
	require.NoError(t, err)
}

func TestResponseService_LoadUsesStoredQuestions(t *testing.T) {
	env := newTestEnv(t, source.StaticSource{Questions: partyQuestions()}, nil)
	completeOne(t, env, map[int]models.ResponseValue{
		0: models.Scalar("Ann"),
		2: models.MultiValue("Mains", "Dessert"),
	})
	completeOne(t, env, map[int]models.ResponseValue{1: models.Scalar("No")})

	svc := NewResponseService(env.repo, env.csv, validator.New(), discardSlog())
	resp, err := svc.Load(context.Background(), "party-rsvp")
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, models.Checkboxes, resp.Questions[2].Type)

	assert.Equal(t, []string{"Mains", "Dessert"}, resp.Rows[0]["Dishes?"].Values())
	assert.Equal(t, "Ann", resp.Rows[0]["Name?"].Text())
	_, answered := resp.Rows[1]["Name?"]
	assert.False(t, answered)
	assert.Empty(t, resp.Warnings)
}

func TestResponseService_LoadWithoutSessions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "park.csv"), []byte("Where?,Why?\nNose Hill,Dogs\n"), 0o644))

	svc := NewResponseService(memory.NewSessionMemory(), storage.NewCSVStore(dir), validator.New(), discardSlog())
	resp, err := svc.Load(context.Background(), "park")
	require.NoError(t, err)
	assert.Equal(t, models.ShortAnswer, resp.Questions[0].Type)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "Dogs", resp.Rows[0]["Why?"].Text())

	_, err = svc.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrResponsesNotFound)
	assert.True(t, IsNotFound(err))

	_, err = svc.Load(context.Background(), " ")
	assert.True(t, IsValidation(err))
}

func TestResponseService_Export(t *testing.T) {
	env := newTestEnv(t, source.StaticSource{Questions: partyQuestions()}, nil)
	completeOne(t, env, map[int]models.ResponseValue{0: models.Scalar("Ann")})
	svc := NewResponseService(env.repo, env.csv, validator.New(), discardSlog())
	ctx := context.Background()

	raw, err := svc.Export(ctx, &models.ExportRequest{FormName: "party-rsvp", Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "party-rsvp.csv", raw.FileName)
	assert.Equal(t, "Name?,Coming?,Dishes?\nAnn,,\n", string(raw.Data))

	sheet, err := svc.Export(ctx, &models.ExportRequest{FormName: "party-rsvp"})
	require.NoError(t, err)
	assert.Equal(t, "party-rsvp.xlsx", sheet.FileName)
	assert.Equal(t, contentTypeXLSX, sheet.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(sheet.Data))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Responses", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Ann", name)

	_, err = svc.Export(ctx, &models.ExportRequest{FormName: "party-rsvp", Format: "pdf"})
	assert.True(t, IsValidation(err))

	_, err = svc.Export(ctx, &models.ExportRequest{FormName: "nobody", Format: "csv"})
	assert.True(t, IsNotFound(err))
}

func TestAutofillService_Run(t *testing.T) {
	dir := t.TempDir()
	svc := NewAutofillService(AutofillDeps{
		Source:    source.StaticSource{Questions: partyQuestions()},
		CSV:       storage.NewCSVStore(dir),
		Validator: validator.New(),
		Logger:    discardSlog(),
	})
	ctx := context.Background()

	report, err := svc.Run(ctx, &AutofillRequest{FormURL: partyURL, Count: 3, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Generated)
	assert.Equal(t, 0, report.Submitted)
	assert.Empty(t, report.Failures)

	table, err := storage.LoadTable(report.CSVPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name?", "Coming?", "Dishes?"}, table.Header)
	require.Len(t, table.Records, 3)
	for _, record := range table.Records {
		assert.Contains(t, []string{"Yes", "No"}, record[1])
		assert.NotEmpty(t, record[2])
	}

	_, err = svc.Run(ctx, &AutofillRequest{FormURL: partyURL, Count: 0})
	assert.True(t, IsValidation(err))

	_, err = svc.Run(ctx, &AutofillRequest{FormURL: partyURL, Count: 1, Submit: true})
	assert.True(t, IsBusinessRule(err))
}

func TestAutofillService_RefusesToSubmitSampleAnswers(t *testing.T) {
	svc := NewAutofillService(AutofillDeps{
		Source:    failingSource{},
		CSV:       storage.NewCSVStore(t.TempDir()),
		Submitter: formfill.NewSubmitter(utils.NewSlogLogger(discardSlog()), 0),
		Drivers: func(string, models.QuestionSet) (formfill.Driver, error) {
			t.Fatal("driver must not be opened")
			return nil, nil
		},
		Validator: validator.New(),
		Logger:    discardSlog(),
	})

	_, err := svc.Run(context.Background(), &AutofillRequest{FormURL: partyURL, Count: 2, Submit: true})
	assert.ErrorIs(t, err, source.ErrFetchFailure)
}

func TestAutofillService_StopsOnCancel(t *testing.T) {
	svc := NewAutofillService(AutofillDeps{
		Source:    source.StaticSource{Questions: partyQuestions()},
		CSV:       storage.NewCSVStore(t.TempDir()),
		Validator: validator.New(),
		Logger:    discardSlog(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Run(ctx, &AutofillRequest{FormURL: partyURL, Count: 5})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Generated)
}

func TestAutofillService_RejectsQuestionsThatCannotRoundTrip(t *testing.T) {
	qs := models.QuestionSet{
		{Text: "Sides?", Type: models.Checkboxes, Options: []string{"Salt; pepper", "Rice"}},
	}
	svc := NewAutofillService(AutofillDeps{
		Source:    source.StaticSource{Questions: qs},
		CSV:       storage.NewCSVStore(t.TempDir()),
		Submitter: formfill.NewSubmitter(utils.NewSlogLogger(discardSlog()), 0),
		Drivers: func(string, models.QuestionSet) (formfill.Driver, error) {
			t.Fatal("driver must not be opened")
			return nil, nil
		},
		Validator: validator.New(),
		Logger:    discardSlog(),
	})
	ctx := context.Background()

	_, err := svc.Run(ctx, &AutofillRequest{FormURL: partyURL, Count: 1, Submit: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot submit sample answers")

	report, err := svc.Run(ctx, &AutofillRequest{FormURL: partyURL, Count: 1, Seed: 7})
	require.NoError(t, err)
	assert.True(t, report.Fallback)

	table, err := storage.LoadTable(report.CSVPath)
	require.NoError(t, err)
	assert.Equal(t, survey.SampleQuestions().Texts(), table.Header)
}
